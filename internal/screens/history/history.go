package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// sessionLimit bounds how many past sessions are listed.
const sessionLimit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionRecord
	Err      error
}

// HistoryScreen lists the player's finished sessions, newest first.
type HistoryScreen struct {
	eventRepo store.EventRepo
	principal identity.Principal
	sessions  []store.SessionRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen for principal. Guests have no stored history.
func New(eventRepo store.EventRepo, principal identity.Principal) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		principal: principal,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	if s.principal.Guest || s.eventRepo == nil {
		s.loaded = true
		return nil
	}
	repo, uid := s.eventRepo, s.principal.UID
	return func() tea.Msg {
		sessions, err := repo.RecentSessions(context.Background(), uid, sessionLimit)
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	dim := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.TextDim)

	switch {
	case s.errMsg != "":
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	case s.principal.Guest:
		return dim.Italic(true).Render("\n\n  Guest sessions are not saved. Sign in with a name to keep a history.")
	case !s.loaded:
		return dim.Render("\n\n  Loading history...")
	case len(s.sessions) == 0:
		return dim.Italic(true).Render("\n\n  No sessions yet. Start practicing!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, rec := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		var accuracy float64
		if rec.ExercisesCompleted > 0 {
			accuracy = float64(rec.CorrectAnswers) / float64(rec.ExercisesCompleted)
		}

		line := fmt.Sprintf("%s%s  %d:%02d  %-6s  %2d exercises  %3.0f%%  ★ %d",
			prefix,
			rec.Timestamp.Local().Format("Jan 02 15:04"),
			rec.DurationSecs/60, rec.DurationSecs%60,
			rec.Difficulty,
			rec.ExercisesCompleted,
			accuracy*100,
			rec.Score)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderDetails(rec, width)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderDetails(rec store.SessionRecord, width int) string {
	var topics []string
	for _, t := range strings.Split(rec.Topics, ",") {
		if t != "" {
			topics = append(topics, layout.TopicTitle(t))
		}
	}
	text := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
		Render("    " + strings.Join(topics, ", "))

	bar := components.AccuracyBar("    accuracy", rec.CorrectAnswers, rec.ExercisesCompleted, min(width-8, 50))
	return lipgloss.JoinVertical(lipgloss.Left, text, bar)
}
