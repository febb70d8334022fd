package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. The correct option is unknown
// until Reveal is called.
type MultiChoice struct {
	Options  []string
	Selected int

	// Chosen is the index of the last submitted option, or -1.
	Chosen int

	// Eliminated options were submitted and judged wrong.
	Eliminated map[int]bool

	revealed string
}

// NewMultiChoice creates a selector over options.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{
		Options:    options,
		Chosen:     -1,
		Eliminated: make(map[int]bool),
	}
}

// Update handles keyboard navigation. Enter or a digit key submits; the
// caller reads Chosen when the returned bool is true.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, bool) {
	if m.revealed != "" {
		return m, false
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, false
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Chosen = m.Selected
		return m, true
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.Options) {
				m.Selected = i
				m.Chosen = i
				return m, true
			}
		}
	}
	return m, false
}

// Value returns the currently chosen option text.
func (m MultiChoice) Value() string {
	if m.Chosen < 0 || m.Chosen >= len(m.Options) {
		return ""
	}
	return m.Options[m.Chosen]
}

// Eliminate greys out the chosen option after a wrong attempt.
func (m *MultiChoice) Eliminate() {
	if m.Chosen >= 0 {
		m.Eliminated[m.Chosen] = true
	}
}

// Reveal marks the canonical answer and freezes the selector.
func (m *MultiChoice) Reveal(answer string) {
	m.revealed = answer
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && m.revealed == "" {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		var style lipgloss.Style
		switch {
		case m.revealed != "" && opt == m.revealed:
			style = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
		case m.revealed != "" && i == m.Chosen:
			style = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
		case m.Eliminated[i] || m.revealed != "":
			style = lipgloss.NewStyle().Foreground(theme.TextDim).Strikethrough(m.Eliminated[i])
		case i == m.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		default:
			style = lipgloss.NewStyle().Foreground(theme.Text)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
