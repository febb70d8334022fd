package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// Button fires OnPress on enter. A disabled button shows Reason next to
// its label instead.
type Button struct {
	Label   string
	Reason  string
	OnPress func() tea.Cmd

	disabled bool
}

// NewButton returns an enabled button.
func NewButton(label string, onPress func() tea.Cmd) Button {
	return Button{Label: label, OnPress: onPress}
}

// Enable toggles the button. reason is shown while disabled.
func (b *Button) Enable(on bool, reason string) {
	b.disabled = !on
	b.Reason = reason
}

// Enabled reports whether enter will fire OnPress.
func (b Button) Enabled() bool { return !b.disabled }

func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || b.disabled || b.OnPress == nil {
		return b, nil
	}
	if kmsg.String() == "enter" {
		return b, b.OnPress()
	}
	return b, nil
}

func (b Button) View() string {
	if !b.disabled {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	label := theme.ButtonDisabled.Render(b.Label)
	if b.Reason == "" {
		return label
	}
	hint := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(b.Reason)
	return lipgloss.JoinHorizontal(lipgloss.Center, label, "  ", hint)
}
