package learn

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Operand bounds for the area model.
const (
	MinOperand = 1
	MaxOperand = 99
)

// Operand selects one of the three numbers of a(b + c).
type Operand int

const (
	OperandA Operand = iota
	OperandB
	OperandC
)

// AreaModel pictures a(b + c) = ab + ac as a rectangle of height a split
// into two parts of width b and c.
type AreaModel struct {
	A, B, C int
}

// NewAreaModel clamps each operand to [MinOperand, MaxOperand].
func NewAreaModel(a, b, c int) AreaModel {
	return AreaModel{A: clampOperand(a), B: clampOperand(b), C: clampOperand(c)}
}

// DefaultAreaModel is the starting picture, 3(5 + 2).
func DefaultAreaModel() AreaModel {
	return NewAreaModel(3, 5, 2)
}

func clampOperand(v int) int {
	return max(MinOperand, min(v, MaxOperand))
}

// Left is the area of the b part.
func (m AreaModel) Left() int { return m.A * m.B }

// Right is the area of the c part.
func (m AreaModel) Right() int { return m.A * m.C }

// Total is the area of the whole rectangle.
func (m AreaModel) Total() int { return m.A * (m.B + m.C) }

// Get returns one operand.
func (m AreaModel) Get(op Operand) int {
	switch op {
	case OperandB:
		return m.B
	case OperandC:
		return m.C
	}
	return m.A
}

// Adjust returns a copy with op moved by delta, clamped.
func (m AreaModel) Adjust(op Operand, delta int) AreaModel {
	switch op {
	case OperandB:
		m.B = clampOperand(m.B + delta)
	case OperandC:
		m.C = clampOperand(m.C + delta)
	default:
		m.A = clampOperand(m.A + delta)
	}
	return m
}

// Equation renders "a(b + c) = ab + ac = total".
func (m AreaModel) Equation() string {
	return fmt.Sprintf("%d(%d + %d) = %d + %d = %d", m.A, m.B, m.C, m.Left(), m.Right(), m.Total())
}

const areaRows = 3

// Render draws the rectangle in at most width columns. The split between
// the parts follows b : c, but each part keeps room for its area label.
// The a label sits left of the middle row; b and c label the top edge.
func (m AreaModel) Render(width int) []string {
	left, right := strconv.Itoa(m.Left()), strconv.Itoa(m.Right())
	aLabel := strconv.Itoa(m.A)
	pad := len(aLabel) + 1

	minLeft := max(len(left), len(strconv.Itoa(m.B))) + 2
	minRight := max(len(right), len(strconv.Itoa(m.C))) + 2
	inner := max(width-pad-3, minLeft+minRight)

	lw := int(math.Round(float64(inner) * float64(m.B) / float64(m.B+m.C)))
	lw = max(minLeft, min(lw, inner-minRight))
	rw := inner - lw

	margin := strings.Repeat(" ", pad)
	lines := []string{
		margin + " " + center(strconv.Itoa(m.B), lw) + " " + center(strconv.Itoa(m.C), rw) + " ",
		margin + "┌" + strings.Repeat("─", lw) + "┬" + strings.Repeat("─", rw) + "┐",
	}
	for row := 0; row < areaRows; row++ {
		prefix, l, r := margin, "", ""
		if row == areaRows/2 {
			prefix = fmt.Sprintf("%*s ", len(aLabel), aLabel)
			l, r = left, right
		}
		lines = append(lines, prefix+"│"+center(l, lw)+"│"+center(r, rw)+"│")
	}
	lines = append(lines, margin+"└"+strings.Repeat("─", lw)+"┴"+strings.Repeat("─", rw)+"┘")
	return lines
}

// center pads s to width w. s is ASCII.
func center(s string, w int) string {
	gap := w - len(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap/2) + s + strings.Repeat(" ", gap-gap/2)
}
