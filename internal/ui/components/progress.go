package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// accuracyColor is green from 80%, yellow from 50%, red below.
func accuracyColor(frac float64) color.Color {
	switch {
	case frac >= 0.8:
		return theme.Success
	case frac >= 0.5:
		return theme.ArcadeYellow
	default:
		return theme.Error
	}
}

// AccuracyBar renders correct out of attempted as a colored bar followed by
// the percentage, width columns wide including label. Nothing attempted
// renders as an empty bar at 0%.
func AccuracyBar(label string, correct, attempted, width int) string {
	frac := 0.0
	if attempted > 0 {
		frac = min(max(float64(correct)/float64(attempted), 0), 1)
	}

	var prefix string
	if label != "" {
		prefix = lipgloss.NewStyle().Foreground(theme.Text).Render(label) + "  "
	}
	pct := fmt.Sprintf("  %3d%%", int(frac*100+0.5))

	cells := max(width-lipgloss.Width(prefix)-len(pct), 4)
	lit := int(float64(cells)*frac + 0.5)

	on := lipgloss.NewStyle().Background(accuracyColor(frac)).Render(strings.Repeat(" ", lit))
	off := lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", cells-lit))
	return prefix + on + off + lipgloss.NewStyle().Foreground(theme.TextDim).Render(pct)
}
