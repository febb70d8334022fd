package session

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/problemgen"
	sess "github.com/abhisek/mathdrill/internal/session"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.quitConfirm {
		return renderQuitConfirm(width)
	}
	if s.exercise == nil {
		return renderLoading(width)
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(centered(width, renderPrompt(s.exercise.Prompt)))
	b.WriteString("\n")
	if f := s.exercise.Prompt.Figure; f != nil {
		b.WriteString("\n")
		b.WriteString(centered(width, renderFigure(f)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(s.renderInput(width))
	b.WriteString("\n")
	b.WriteString(s.renderFeedback(width))
	return b.String()
}

func (s *SessionScreen) renderInfoLine(width int) string {
	snap := s.ctrl.State(context.Background())
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s · %s", layout.TopicTitle(string(s.exercise.Topic)), s.exercise.Difficulty))

	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d  %s %d  %s %d/%d",
			s.question,
			lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Render("★"),
			snap.Totals.Score,
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			snap.Totals.Correct,
			snap.Totals.ExercisesCompleted,
		))

	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

// renderPrompt colors annotated segments and falls back to the plain text.
func renderPrompt(p problemgen.Prompt) string {
	base := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	if len(p.Segments) == 0 {
		return base.Render(p.Text)
	}
	var b strings.Builder
	for _, seg := range p.Segments {
		style := base
		if c := segmentColor(seg.Color); c != nil {
			style = style.Foreground(c)
		}
		b.WriteString(style.Render(seg.Text))
	}
	return b.String()
}

func segmentColor(c problemgen.Color) color.Color {
	switch c {
	case problemgen.ColorPink:
		return theme.SegmentPink
	case problemgen.ColorCyan:
		return theme.SegmentCyan
	case problemgen.ColorLime:
		return theme.SegmentLime
	case problemgen.ColorAmber:
		return theme.SegmentAmber
	}
	return nil
}

// renderFigure draws triangle ABC with apex A. A cevian from A is drawn
// into the figure; the caption lists every marked feature.
func renderFigure(f *problemgen.Figure) string {
	fromApex := false
	for _, l := range f.Lines {
		if l.From == "A" {
			fromApex = true
		}
	}
	mid := " "
	foot := "─"
	if fromApex {
		mid = "│"
		foot = "┴"
	}
	side := "/"
	otherSide := "\\"
	if f.EqualSides {
		side = "⫽"
		otherSide = "⫽"
	}

	art := strings.Join([]string{
		"       A",
		fmt.Sprintf("      %s%s%s", side, mid, otherSide),
		fmt.Sprintf("     %s %s %s", side, mid, otherSide),
		fmt.Sprintf("    %s  %s  %s", side, mid, otherSide),
		fmt.Sprintf("   B───%s───C", foot),
	}, "\n")

	figure := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Render(art)
	caption := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(problemgen.DescribeFigure(f))
	return lipgloss.JoinVertical(lipgloss.Center, figure, "", caption)
}

func (s *SessionScreen) renderInput(width int) string {
	switch {
	case s.exercise.Format == problemgen.FormatMultipleChoice:
		return centered(width, s.mc.View())
	case len(s.parts) > 0:
		fields := make([]string, len(s.parts))
		for i, p := range s.parts {
			fields[i] = p.View()
		}
		return centered(width, strings.Join(fields, "\n"))
	default:
		return centered(width, "Answer: "+s.input.View())
	}
}

func (s *SessionScreen) renderFeedback(width int) string {
	fb := s.feedback
	if fb == nil {
		return ""
	}

	var lines []string
	switch fb.Outcome {
	case sess.OutcomeCorrect:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Success).Bold(true).
			Render(fmt.Sprintf("Correct! +%d", fb.PointsAwarded)))
	case sess.OutcomeExhausted:
		lines = append(lines,
			lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("Out of attempts"),
			lipgloss.NewStyle().Foreground(theme.Text).Render("Answer: "+fb.Answer))
	case sess.OutcomeRetry:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Error).Bold(true).
			Render(fmt.Sprintf("Not quite. %s left.", plural(fb.AttemptsLeft, "attempt"))))
		if fb.Hint != "" {
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.Accent).Render("Hint: "+fb.Hint))
		}
	}

	if s.resolved() {
		text := fb.Explanation
		if s.explanation != "" {
			text = s.explanation
		}
		if text != "" {
			lines = append(lines, "", lipgloss.NewStyle().
				Width(min(width-8, 72)).
				Foreground(theme.Text).
				Render(text))
		}
		switch {
		case s.explaining:
			lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("Working out a step-by-step explanation..."))
		case s.explainMissed:
			lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("No detailed explanation right now."))
		}
	}

	return centered(width, lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func centered(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("End session?")))
	b.WriteString("\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.TextDim).Render("Points you earned are already saved.")))
	b.WriteString("\n\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Success).Render("[Y] Yes, end session")))
	b.WriteString("\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Primary).Render("[N] No, keep going")))
	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Preparing your session...")
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
