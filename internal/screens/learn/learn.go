package learn

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/learn"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// LearnScreen lists the topic lessons and shows one at a time. The
// distributive lesson carries an area model whose numbers can be changed.
type LearnScreen struct {
	lessons  []learn.Lesson
	selected int
	open     bool
	area     learn.AreaModel
	operand  learn.Operand
}

var _ screen.Screen = (*LearnScreen)(nil)
var _ screen.KeyHintProvider = (*LearnScreen)(nil)
var _ screen.EscCapturer = (*LearnScreen)(nil)

// New creates a LearnScreen over the catalog's lessons.
func New(catalog *learn.Catalog) *LearnScreen {
	return &LearnScreen{
		lessons: catalog.Lessons(),
		area:    learn.DefaultAreaModel(),
	}
}

func (s *LearnScreen) Init() tea.Cmd {
	return nil
}

func (s *LearnScreen) Title() string {
	if s.open {
		return "Learn · " + s.lessons[s.selected].Title
	}
	return "Learn"
}

// CapturesEsc keeps Esc inside the screen while a lesson is open so it
// returns to the list.
func (s *LearnScreen) CapturesEsc() bool {
	return s.open
}

func (s *LearnScreen) KeyHints() []layout.KeyHint {
	if !s.open {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Open"},
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Esc", Description: "Back"},
		}
	}
	hints := []layout.KeyHint{{Key: "←→", Description: "Topic"}}
	if s.lessons[s.selected].AreaModel {
		hints = append(hints,
			layout.KeyHint{Key: "Tab", Description: "Pick a/b/c"},
			layout.KeyHint{Key: "+/-", Description: "Change"},
		)
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Topics"})
}

func (s *LearnScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}

	if !s.open {
		switch key.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.lessons)-1 {
				s.selected++
			}
		case "enter":
			s.open = len(s.lessons) > 0
		}
		return s, nil
	}

	switch key.String() {
	case "esc":
		s.open = false
	case "left", "h":
		s.selected = (s.selected + len(s.lessons) - 1) % len(s.lessons)
	case "right", "l":
		s.selected = (s.selected + 1) % len(s.lessons)
	}
	if s.lessons[s.selected].AreaModel {
		switch key.String() {
		case "tab":
			s.operand = (s.operand + 1) % 3
		case "+", "=", "up":
			s.area = s.area.Adjust(s.operand, 1)
		case "-", "_", "down":
			s.area = s.area.Adjust(s.operand, -1)
		}
	}
	return s, nil
}

func (s *LearnScreen) View(width, height int) string {
	if len(s.lessons) == 0 {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  No lessons available.")
	}
	if s.open {
		return s.viewLesson(width)
	}
	return s.viewList(width)
}

func (s *LearnScreen) viewList(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	for i, l := range s.lessons {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%-32s %s", prefix, l.Title, difficultyPoints(l.Points))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *LearnScreen) viewLesson(width int) string {
	l := s.lessons[s.selected]
	cw := components.ContentWidth(width)

	heading := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	text := lipgloss.NewStyle().Foreground(theme.Text).Width(cw)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Width(cw)

	var sections []string
	sections = append(sections, heading.Render(strings.ToUpper(l.Title)), text.Render(l.Summary))

	var steps []string
	for i, st := range l.Steps {
		steps = append(steps, fmt.Sprintf("%d. %s", i+1, st))
	}
	sections = append(sections, text.Render(strings.Join(steps, "\n")))

	if len(l.Formulas) > 0 {
		formula := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
		var lines []string
		for _, f := range l.Formulas {
			lines = append(lines, "  "+formula.Render(f))
		}
		sections = append(sections, heading.Render("FORMULAS"), strings.Join(lines, "\n"))
	}

	if l.AreaModel {
		sections = append(sections, heading.Render("AREA MODEL"), s.renderArea(cw))
	}

	example := []string{"  " + l.Example.Prompt}
	if l.Example.Figure != "" {
		example = append(example, "  Figure: "+l.Example.Figure)
	}
	if len(l.Example.Options) > 0 {
		example = append(example, "  Options: "+strings.Join(l.Example.Options, " · "))
	}
	example = append(example, "  Answer: "+l.Example.Answer)
	sections = append(sections,
		heading.Render("WORKED EXAMPLE"),
		text.Render(strings.Join(example, "\n")),
		dim.Italic(true).Render("  "+l.Example.Explanation),
		dim.Render(fmt.Sprintf("%d attempt(s) per exercise · points %s", l.MaxAttempts, difficultyPoints(l.Points))),
	)

	body := lipgloss.NewStyle().Width(cw).Render(strings.Join(sections, "\n\n"))
	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, body)
}

// renderArea draws the equation with a, b and c in their prompt colors,
// the selected operand underlined, and the rectangle below it.
func (s *LearnScreen) renderArea(width int) string {
	colors := []lipgloss.Style{
		lipgloss.NewStyle().Foreground(theme.SegmentPink).Bold(true),
		lipgloss.NewStyle().Foreground(theme.SegmentCyan).Bold(true),
		lipgloss.NewStyle().Foreground(theme.SegmentLime).Bold(true),
	}
	colors[s.operand] = colors[s.operand].Underline(true)

	m := s.area
	eq := fmt.Sprintf("  %s(%s + %s) = %d + %d = %d",
		colors[learn.OperandA].Render(fmt.Sprint(m.A)),
		colors[learn.OperandB].Render(fmt.Sprint(m.B)),
		colors[learn.OperandC].Render(fmt.Sprint(m.C)),
		m.Left(), m.Right(), m.Total())

	box := lipgloss.NewStyle().Foreground(theme.Text)
	var lines []string
	for _, line := range m.Render(min(width-2, 60)) {
		lines = append(lines, "  "+box.Render(line))
	}
	return eq + "\n\n" + strings.Join(lines, "\n")
}

func difficultyPoints(points map[string]int) string {
	return fmt.Sprintf("%d/%d/%d", points["easy"], points["medium"], points["hard"])
}
