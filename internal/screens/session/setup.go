package session

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// SetupScreen picks the topics and difficulty for a practice session.
type SetupScreen struct {
	deps       Deps
	topics     []problemgen.Topic
	selected   map[problemgen.Topic]bool
	cursor     int
	difficulty int
	start      components.Button
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// NewSetup creates a setup screen over the generator's registered topics.
// Every topic starts selected at easy difficulty.
func NewSetup(deps Deps) *SetupScreen {
	topics := deps.generator().Registry().Topics()
	selected := make(map[problemgen.Topic]bool, len(topics))
	for _, t := range topics {
		selected[t] = true
	}
	s := &SetupScreen{
		deps:     deps,
		topics:   topics,
		selected: selected,
	}
	s.start = components.NewButton("START", s.startCmd)
	return s
}

func (s *SetupScreen) Init() tea.Cmd { return nil }

func (s *SetupScreen) Title() string { return "New Session" }

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Topic"},
		{Key: "Space", Description: "Toggle"},
		{Key: "←→", Description: "Difficulty"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

// Selection returns the chosen topics in registry order and the difficulty.
func (s *SetupScreen) Selection() ([]problemgen.Topic, problemgen.Difficulty) {
	var out []problemgen.Topic
	for _, t := range s.topics {
		if s.selected[t] {
			out = append(out, t)
		}
	}
	return out, problemgen.Difficulties[s.difficulty]
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.topics)-1 {
			s.cursor++
		}
	case "space", " ", "x":
		if len(s.topics) > 0 {
			t := s.topics[s.cursor]
			s.selected[t] = !s.selected[t]
		}
	case "a":
		all := true
		for _, t := range s.topics {
			all = all && s.selected[t]
		}
		for _, t := range s.topics {
			s.selected[t] = !all
		}
	case "left", "h":
		if s.difficulty > 0 {
			s.difficulty--
		}
	case "right", "l":
		if s.difficulty < len(problemgen.Difficulties)-1 {
			s.difficulty++
		}
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	default:
		var cmd tea.Cmd
		s.start, cmd = s.start.Update(kmsg)
		return s, cmd
	}

	topics, _ := s.Selection()
	s.start.Enable(len(topics) > 0, "pick at least one topic")
	return s, nil
}

func (s *SetupScreen) startCmd() tea.Cmd {
	topics, d := s.Selection()
	if len(topics) == 0 {
		return nil
	}
	practice := New(s.deps, topics, d)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: practice} }
}

func (s *SetupScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render("TOPICS"))
	b.WriteString("\n\n")
	for i, t := range s.topics {
		box := "[ ]"
		if s.selected[t] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, layout.TopicTitle(string(t)))
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.cursor {
			line = "▸ " + line
			style = style.Foreground(theme.Primary).Bold(true)
		} else {
			line = "  " + line
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render("DIFFICULTY"))
	b.WriteString("\n\n")
	labels := make([]string, len(problemgen.Difficulties))
	for i, d := range problemgen.Difficulties {
		labels[i] = strings.ToUpper(d.String())
	}
	b.WriteString(components.ArcadeTabs(labels, s.difficulty, cw-6))
	b.WriteString("\n")
	b.WriteString(s.pointsLine())
	b.WriteString("\n\n")
	b.WriteString(s.start.View())

	return components.CabinetFrame(components.ArcadeCard(b.String(), cw), width, height)
}

// pointsLine lists what a correct answer is worth per selected topic at the
// chosen difficulty.
func (s *SetupScreen) pointsLine() string {
	_, d := s.Selection()
	reg := s.deps.generator().Registry()
	var parts []string
	for _, t := range s.topics {
		if !s.selected[t] {
			continue
		}
		if rule, ok := reg.Lookup(t); ok {
			parts = append(parts, fmt.Sprintf("%s %d", layout.TopicTitle(string(t)), rule.Points[d]))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(theme.Difficulty(d.String()))
	return style.Render("points: " + strings.Join(parts, " · "))
}
