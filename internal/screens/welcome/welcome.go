package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	bannerAfter  = 500 * time.Millisecond
)

// sparkle frames cycle around the banner
var sparkleFrames = []string{"★", "✦", "✧"}

type tickMsg time.Time

// SignIn turns the chosen principal into the command that opens the game.
type SignIn func(identity.Principal) tea.Cmd

// WelcomeScreen shows the banner and asks who is playing.
type WelcomeScreen struct {
	signIn    SignIn
	input     components.TextInput
	now       func() time.Time
	elapsed   time.Duration
	tickCount int
	errMsg    string
	signedIn  bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that hands the chosen principal to signIn.
func New(signIn SignIn) *WelcomeScreen {
	in := components.NewTextInput("your name", false, 32)
	in.Label = "Name:"
	return &WelcomeScreen{
		signIn: signIn,
		input:  in,
		now:    time.Now,
	}
}

func (w *WelcomeScreen) Title() string {
	return "Welcome"
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Play"},
		{Key: "Tab", Description: "Play as guest"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Batch(w.input.Init(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		w.elapsed += tickInterval
		w.tickCount++
		if w.signedIn {
			return w, nil
		}
		return w, tick()

	case tea.KeyPressMsg:
		if w.signedIn {
			return w, nil
		}
		switch msg.String() {
		case "enter":
			p, err := identity.Named(w.input.Value())
			if err != nil {
				w.errMsg = "Type a name with at least one letter or digit."
				return w, nil
			}
			return w, w.finish(p)
		case "tab":
			return w, w.finish(identity.Guest(w.now()))
		}
		w.errMsg = ""
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return w, cmd
}

func (w *WelcomeScreen) finish(p identity.Principal) tea.Cmd {
	w.signedIn = true
	return w.signIn(p)
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	banner := RenderBanner(width)
	if w.elapsed >= bannerAfter {
		sparkle := sparkleFrames[w.tickCount%len(sparkleFrames)]
		accent := lipgloss.NewStyle().Foreground(theme.Accent).Render(sparkle)
		secondary := lipgloss.NewStyle().Foreground(theme.Secondary).Render(sparkle)
		banner = lipgloss.JoinHorizontal(lipgloss.Center, accent, "  ", banner, "  ", secondary)
	}
	sections = append(sections, banner, "")

	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render("Four topics. Three levels. How far can you go?"))
	sections = append(sections, "")
	sections = append(sections, w.input.View())

	if w.errMsg != "" {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Error).Render(w.errMsg))
	}

	sections = append(sections, "", lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Italic(true).
		Render("guests play without saving their score"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
