package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/session"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// SummaryScreen displays the result of a finished practice session.
type SummaryScreen struct {
	summary *session.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. A nil summary renders an empty session.
func New(summary *session.Summary) *SummaryScreen {
	if summary == nil {
		summary = &session.Summary{}
	}
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary

	var b strings.Builder

	title := "Session complete!"
	if sum.ExercisesCompleted == 0 {
		title = "No exercises finished this time"
	}
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(title)))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("Duration: %d:%02d   Difficulty: %s", mins, secs, sum.Difficulty))))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Score: %s      Exercises: %d      Correct: %d      Accuracy: %.0f%%",
		lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render(fmt.Sprintf("%d", sum.Score)),
		sum.ExercisesCompleted, sum.Correct, sum.Accuracy*100)
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Text).Render(statsLine)))
	b.WriteString("\n\n")

	if len(sum.TopicResults) == 0 {
		return b.String()
	}

	barWidth := min(width-8, 60)
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim).Render("Topics")))
	b.WriteString("\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", barWidth))))
	b.WriteString("\n\n")

	for _, tr := range sum.TopicResults {
		if tr.Attempted == 0 {
			continue
		}
		b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Text).
			Render(fmt.Sprintf("%s   %d/%d correct   +%d", layout.TopicTitle(string(tr.Topic)), tr.Correct, tr.Attempted, tr.Points))))
		b.WriteString("\n")

		b.WriteString(center(width, components.AccuracyBar("", tr.Correct, tr.Attempted, barWidth)))
		b.WriteString("\n\n")
	}

	return b.String()
}

func center(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
