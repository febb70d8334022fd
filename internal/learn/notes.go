package learn

import "github.com/abhisek/mathdrill/internal/problemgen"

type note struct {
	summary string
	steps   []string
}

var notes = map[problemgen.Topic]note{
	problemgen.TopicOrderOfOperations: {
		summary: "A fixed order of operations gives every expression exactly one value. Always start inside the parentheses.",
		steps: []string{
			"Parentheses: simplify every bracketed part, innermost first.",
			"Powers: evaluate squares.",
			"Multiplication and division, from left to right.",
			"Addition and subtraction, from left to right.",
		},
	},
	problemgen.TopicDistributive: {
		summary: "Multiplying a sum multiplies each of its terms: a(b + c) = ab + ac.",
		steps: []string{
			"Multiply the factor outside the parentheses by each term inside.",
			"For two binomials, multiply every term of one by every term of the other.",
			"Collect like terms and write the x² term, then the x term, then the constant.",
		},
	},
	problemgen.TopicShortMultiplication: {
		summary: "Three identities expand common products without multiplying term by term.",
		steps: []string{
			"Square the first term.",
			"Add or subtract twice the product of the two terms.",
			"Add the square of the second term.",
			"In (a - b)(a + b) the middle terms cancel, leaving a² - b².",
		},
	},
	problemgen.TopicIsosceles: {
		summary: "In an isosceles triangle the altitude, median and angle bisector from the apex are the same segment.",
		steps: []string{
			"An altitude meets the opposite side at a right angle.",
			"A median meets the opposite side at its midpoint.",
			"An angle bisector splits the vertex angle into two equal angles.",
			"If two of these coincide from the same vertex, the triangle is isosceles.",
			"One special line on its own proves nothing, and lines from different vertices do not combine.",
		},
	},
}
