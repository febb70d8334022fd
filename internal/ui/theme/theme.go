package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Base palette.
var (
	Primary   = lipgloss.Color("#8B5CF6")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F97316")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0F172A")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")

	ArcadeYellow = lipgloss.Color("#FACC15")
	ArcadeCyan   = lipgloss.Color("#22D3EE")
)

// Highlight colors for the annotated parts of an exercise prompt, e.g. the
// two factors of a short multiplication.
var (
	SegmentPink  = lipgloss.Color("#EC4899")
	SegmentCyan  = lipgloss.Color("#06B6D4")
	SegmentLime  = lipgloss.Color("#84CC16")
	SegmentAmber = lipgloss.Color("#F59E0B")
)

var difficultyColors = map[string]color.Color{
	"easy":   Success,
	"medium": ArcadeYellow,
	"hard":   Error,
}

// Difficulty returns the badge color for a difficulty name. Unknown names
// render dim.
func Difficulty(name string) color.Color {
	if c, ok := difficultyColors[name]; ok {
		return c
	}
	return TextDim
}

// Start button states on the session setup screen.
var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonDisabled = lipgloss.NewStyle().
			Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)
