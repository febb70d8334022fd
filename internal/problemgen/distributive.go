package problemgen

import (
	"fmt"
	"strconv"
)

// Distributive-property variants.
const (
	VariantSimple   Variant = "simple"   // a(bx + c)
	VariantExpanded Variant = "expanded" // (ax + b)(cx + d)
)

var distributiveRanges = map[Difficulty]operandRange{
	DifficultyEasy:   {2, 6},
	DifficultyMedium: {2, 6},
	DifficultyHard:   {2, 9},
}

func distributiveRule() *Rule {
	return &Rule{
		Topic:       TopicDistributive,
		Title:       "Distributive property",
		MaxAttempts: 3,
		Points: map[Difficulty]int{
			DifficultyEasy:   10,
			DifficultyMedium: 15,
			DifficultyHard:   25,
		},
		Variants: map[Difficulty][]Variant{
			DifficultyEasy:   {VariantSimple},
			DifficultyMedium: {VariantSimple, VariantExpanded},
			DifficultyHard:   {VariantExpanded},
		},
		Hints: map[Variant]string{
			"": "Multiply every term of one factor by every term of the other, then add like terms.",
		},
		Build: buildDistributive,
	}
}

func buildDistributive(v Variant, d Difficulty, src Source) Draft {
	r := distributiveRanges[d]
	n := func() int { return between(src, r.lo, r.hi) }

	if v == VariantExpanded {
		return expandedDraft(n(), n(), n(), n())
	}
	return simpleDistributiveDraft(n(), n(), n())
}

// simpleDistributiveDraft builds a(bx + c) = (ab)x + ac.
func simpleDistributiveDraft(a, b, c int) Draft {
	inner := linearTerm(b) + " + " + strconv.Itoa(c)
	answer := formatPolynomial(0, a*b, a*c)
	return Draft{
		Variant: VariantSimple,
		Prompt: Prompt{
			Text: fmt.Sprintf("Expand: %d(%s)", a, inner),
			Segments: []Segment{
				{Text: "Expand: "},
				{Text: strconv.Itoa(a), Color: ColorPink},
				{Text: "("},
				{Text: linearTerm(b), Color: ColorCyan},
				{Text: " + "},
				{Text: strconv.Itoa(c), Color: ColorLime},
				{Text: ")"},
			},
		},
		Format: FormatFreeText,
		Answer: answer,
		Explanation: fmt.Sprintf("Multiply %d by each term: %d × %s = %s and %d × %d = %d, so %d(%s) = %s.",
			a, a, linearTerm(b), linearTerm(a*b), a, c, a*c, a, inner, answer),
	}
}

// expandedDraft builds (ax + b)(cx + d) = (ac)x² + (ad + bc)x + bd as three
// independently entered parts.
func expandedDraft(a, b, c, d int) Draft {
	x2, x1, x0 := a*c, a*d+b*c, b*d
	left := linearTerm(a) + " + " + strconv.Itoa(b)
	right := linearTerm(c) + " + " + strconv.Itoa(d)
	return Draft{
		Variant: VariantExpanded,
		Prompt: Prompt{
			Text: fmt.Sprintf("Expand: (%s)(%s)", left, right),
			Segments: []Segment{
				{Text: "Expand: ("},
				{Text: linearTerm(a), Color: ColorPink},
				{Text: " + "},
				{Text: strconv.Itoa(b), Color: ColorCyan},
				{Text: ")("},
				{Text: linearTerm(c), Color: ColorLime},
				{Text: " + "},
				{Text: strconv.Itoa(d), Color: ColorAmber},
				{Text: ")"},
			},
		},
		Format: FormatMultiPart,
		Answer: formatPolynomial(x2, x1, x0),
		Parts: []Part{
			{Key: PartX2, Label: "x²", Value: strconv.Itoa(x2)},
			{Key: PartX, Label: "x", Value: strconv.Itoa(x1)},
			{Key: PartC, Label: "constant", Value: strconv.Itoa(x0)},
		},
		Explanation: fmt.Sprintf("Multiply term by term: %s·%s = %dx², %s·%d + %d·%s = %dx, %d·%d = %d. Together: %s.",
			linearTerm(a), linearTerm(c), x2,
			linearTerm(a), d, b, linearTerm(c), x1,
			b, d, x0, formatPolynomial(x2, x1, x0)),
	}
}
