package problemgen

import (
	"fmt"
	"strconv"
)

// Short-multiplication formula variants.
const (
	VariantSquareOfSum        Variant = "square-of-sum"
	VariantSquareOfDifference Variant = "square-of-difference"
	VariantDifferenceSquares  Variant = "difference-of-squares"
)

func shortMultiplicationRule() *Rule {
	return &Rule{
		Topic:       TopicShortMultiplication,
		Title:       "Short multiplication formulas",
		MaxAttempts: 3,
		Points: map[Difficulty]int{
			DifficultyEasy:   15,
			DifficultyMedium: 20,
			DifficultyHard:   25,
		},
		Variants: map[Difficulty][]Variant{
			DifficultyEasy:   {VariantSquareOfSum},
			DifficultyMedium: {VariantSquareOfSum, VariantSquareOfDifference},
			DifficultyHard:   {VariantSquareOfSum, VariantSquareOfDifference, VariantDifferenceSquares},
		},
		Hints: map[Variant]string{
			VariantSquareOfSum:        "(a + b)² = a² + 2ab + b²",
			VariantSquareOfDifference: "(a - b)² = a² - 2ab + b²",
			VariantDifferenceSquares:  "(a - b)(a + b) = a² - b²",
		},
		Build: buildShortMultiplication,
	}
}

func buildShortMultiplication(v Variant, _ Difficulty, src Source) Draft {
	a := between(src, 1, 5)
	b := between(src, 2, 9)
	return shortMultiplicationDraft(v, a, b)
}

func shortMultiplicationDraft(v Variant, a, b int) Draft {
	ax := linearTerm(a)
	var expr, formula string
	var answer string
	switch v {
	case VariantSquareOfDifference:
		expr = fmt.Sprintf("(%s - %d)²", ax, b)
		formula = "(a - b)² = a² - 2ab + b²"
		answer = formatPolynomial(a*a, -2*a*b, b*b)
	case VariantDifferenceSquares:
		expr = fmt.Sprintf("(%s - %d)(%s + %d)", ax, b, ax, b)
		formula = "(a - b)(a + b) = a² - b²"
		answer = formatPolynomial(a*a, 0, -b*b)
	default:
		v = VariantSquareOfSum
		expr = fmt.Sprintf("(%s + %d)²", ax, b)
		formula = "(a + b)² = a² + 2ab + b²"
		answer = formatPolynomial(a*a, 2*a*b, b*b)
	}

	return Draft{
		Variant: v,
		Prompt: Prompt{
			Text: "Expand: " + expr,
			Segments: []Segment{
				{Text: "Expand: "},
				{Text: expr, Color: ColorCyan},
			},
		},
		Format: FormatFreeText,
		Answer: answer,
		Explanation: fmt.Sprintf("Use %s with a = %s and b = %s: %s = %s.",
			formula, ax, strconv.Itoa(b), expr, answer),
	}
}
