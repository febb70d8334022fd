package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// Terminal size limits. Below Min* only a resize notice is drawn; below
// the compact thresholds screens drop decorations such as the mascot.
const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	compactWidth  = 100
	compactHeight = 30
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool   { return width < compactWidth }
func IsCompactHeight(height int) bool { return height < compactHeight }

// IsTooSmall reports whether the terminal cannot fit the frame at all.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage fills the terminal with a resize notice.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Resize to at least %d×%d\n(now %d×%d)", MinWidth, MinHeight, width, height))
}

// Status is the signed-in player's standing shown on the right of the header.
type Status struct {
	Username  string
	Guest     bool
	Score     int
	Completed int
}

func (st Status) render() string {
	if st.Username == "" {
		return ""
	}
	name := st.Username
	if st.Guest {
		name += " (guest)"
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	score := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Render(fmt.Sprintf("★ %d", st.Score))
	done := lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("✓ %d", st.Completed))
	return dim.Render(name) + "   " + score + "   " + done
}

// RenderHeader draws the app name, the screen title centered, and the
// player status on the right.
func RenderHeader(title string, st Status, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Mathdrill")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	return bar(spread(brand, center, st.render(), width-4), width)
}

// RenderFooter draws as many key hints as fit on one line.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	line := " "
	for _, h := range hints {
		part := "  " + key.Render(h.Key) + " " + desc.Render(h.Description)
		if lipgloss.Width(line+part) > width-4 {
			break
		}
		line += part
	}
	return bar(line, width)
}

// RenderFrame stacks header, content and footer, giving the content all
// remaining rows.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(rows).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// spread places center in the middle of inner columns with left and right
// pinned to the edges, keeping at least one space between them.
func spread(left, center, right string, inner int) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	gapL := max((inner-cw)/2-lw, 1)
	gapR := max(inner-lw-gapL-cw-rw, 1)
	return left + strings.Repeat(" ", gapL) + center + strings.Repeat(" ", gapR) + right
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// TopicTitle turns a topic identifier such as "order-of-operations" into a
// display name.
func TopicTitle(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
