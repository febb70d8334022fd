package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with Mathdrill styling.
type TextInput struct {
	Model textinput.Model

	// Label is rendered in front of the field when set.
	Label string

	// IntegerOnly drops every typed character except digits and a leading
	// minus sign.
	IntegerOnly bool

	marked  bool
	correct bool
}

// NewTextInput creates a new focused text input.
func NewTextInput(placeholder string, integerOnly bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{
		Model:       ti,
		IntegerOnly: integerOnly,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.IntegerOnly {
		if kmsg, ok := msg.(tea.KeyPressMsg); ok && kmsg.Text != "" && !t.acceptsInteger(kmsg.Text) {
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) acceptsInteger(text string) bool {
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' && t.Model.Value() == "" && strings.Count(text, "-") == 1 && text[0] == '-':
		default:
			return false
		}
	}
	return true
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.Label != "" {
		view = lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(t.Label) + " " + view
	}
	if t.marked {
		if t.correct {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Focus focuses the field.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus from the field.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Clear empties the field and removes any mark.
func (t *TextInput) Clear() {
	t.Model.Reset()
	t.marked = false
}

// Mark shows a check or cross after the field.
func (t *TextInput) Mark(correct bool) {
	t.marked = true
	t.correct = correct
}
