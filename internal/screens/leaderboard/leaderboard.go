package leaderboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/leaderboard"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// tab is one selectable board.
type tab struct {
	label string
	query leaderboard.Query
}

type boardLoadedMsg struct {
	Tab  int
	View *leaderboard.View
	Err  error
}

// LeaderboardScreen shows the top players of one board at a time.
type LeaderboardScreen struct {
	service *leaderboard.Service
	uid     string
	tabs    []tab
	active  int
	view    *leaderboard.View
	loading bool
	errMsg  string
}

var _ screen.Screen = (*LeaderboardScreen)(nil)
var _ screen.KeyHintProvider = (*LeaderboardScreen)(nil)

// New creates a leaderboard screen with all-time, daily and weekly boards
// followed by one board per topic. uid marks the viewer's row.
func New(service *leaderboard.Service, uid string, topics []problemgen.Topic) *LeaderboardScreen {
	tabs := []tab{
		{"ALL TIME", leaderboard.Query{Board: leaderboard.BoardAllTime}},
		{"TODAY", leaderboard.Query{Board: leaderboard.BoardDaily}},
		{"THIS WEEK", leaderboard.Query{Board: leaderboard.BoardWeekly}},
	}
	for _, t := range topics {
		tabs = append(tabs, tab{
			label: strings.ToUpper(layout.TopicTitle(string(t))),
			query: leaderboard.Query{Board: leaderboard.BoardTopic, Topic: string(t)},
		})
	}
	return &LeaderboardScreen{
		service: service,
		uid:     uid,
		tabs:    tabs,
	}
}

func (s *LeaderboardScreen) Init() tea.Cmd {
	return s.load()
}

func (s *LeaderboardScreen) Title() string {
	return "Leaderboard"
}

func (s *LeaderboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Board"},
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LeaderboardScreen) load() tea.Cmd {
	if s.service == nil {
		s.errMsg = "leaderboard unavailable"
		return nil
	}
	s.loading = true
	s.errMsg = ""
	service, uid, idx, q := s.service, s.uid, s.active, s.tabs[s.active].query
	return func() tea.Msg {
		view, err := service.View(context.Background(), q, uid)
		return boardLoadedMsg{Tab: idx, View: view, Err: err}
	}
}

func (s *LeaderboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		if msg.Tab != s.active {
			return s, nil
		}
		s.loading = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.view = nil
			return s, nil
		}
		s.view = msg.View
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "left", "h", "shift+tab":
			s.active = (s.active - 1 + len(s.tabs)) % len(s.tabs)
			return s, s.load()
		case "right", "l", "tab":
			s.active = (s.active + 1) % len(s.tabs)
			return s, s.load()
		case "r", "R":
			return s, s.load()
		}
	}
	return s, nil
}

func (s *LeaderboardScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	labels := make([]string, len(s.tabs))
	for i, t := range s.tabs {
		labels[i] = t.label
	}

	sections := []string{components.ArcadeTabs(labels, s.active, width-4), ""}

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	switch {
	case s.errMsg != "":
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render("Error: "+s.errMsg))
	case s.loading && s.view == nil:
		sections = append(sections, dim.Render("Loading..."))
	case s.view == nil || len(s.view.Entries) == 0:
		sections = append(sections, dim.Italic(true).Render("Nobody has scored here yet."))
	default:
		sections = append(sections, components.ArcadeCard(s.renderTable(), cw))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, sections...))
}

func (s *LeaderboardScreen) renderTable() string {
	header := lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).
		Render(row("#", "PLAYER", "SCORE", "DONE"))

	lines := []string{header}
	for _, e := range s.view.Entries {
		lines = append(lines, s.renderEntry(e))
	}
	if s.view.Self != nil {
		lines = append(lines,
			lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("·", lipgloss.Width(header))),
			s.renderEntry(*s.view.Self))
	}
	return strings.Join(lines, "\n")
}

func (s *LeaderboardScreen) renderEntry(e leaderboard.Entry) string {
	style := lipgloss.NewStyle().Foreground(theme.Text)
	switch {
	case e.UID == s.uid:
		style = style.Foreground(theme.ArcadeCyan).Bold(true)
	case e.Rank == 1:
		style = style.Foreground(theme.ArcadeYellow).Bold(true)
	}
	return style.Render(row(
		fmt.Sprintf("%d", e.Rank),
		e.Username,
		fmt.Sprintf("%d", e.Score),
		fmt.Sprintf("%d", e.CompletedExercises),
	))
}

func row(rank, name, score, done string) string {
	if len([]rune(name)) > 18 {
		name = string([]rune(name)[:17]) + "…"
	}
	return fmt.Sprintf("%4s  %-18s %7s %6s", rank, name, score, done)
}
