package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // No points yet
	MascotCelebrating                      // Player has scored
	MascotGuest                            // Progress is not saved
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ ±×÷ │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ ±×÷ │
└─╥═╥─┘
  ╚═╝`

const mascotGuest = `┌─────┐
│ ◉ ◉ │ ?
│  ─  │
│ ±×÷ │
└─────┘`

// mascotFor picks the variant for a player.
func mascotFor(guest bool, score int) MascotVariant {
	switch {
	case guest:
		return MascotGuest
	case score > 0:
		return MascotCelebrating
	}
	return MascotIdle
}

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.ArcadeYellow
	case MascotGuest:
		art = mascotGuest
		fg = theme.Accent
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
