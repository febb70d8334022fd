package problemgen

import (
	"strconv"
	"strings"
)

// Order-of-operations variants, from a single precedence interaction up to
// two levels of nested parentheses.
const (
	VariantSumProduct    Variant = "sum-product"
	VariantProductSquare Variant = "product-square"
	VariantGroupFirst    Variant = "group-first"
	VariantGroupLast     Variant = "group-last"
	VariantNestedOuter   Variant = "nested-outer"
	VariantNestedInner   Variant = "nested-inner"
)

const orderOfOperationsOptions = 4

type operandRange struct{ lo, hi int }

var orderRanges = map[Difficulty]operandRange{
	DifficultyEasy:   {1, 10},
	DifficultyMedium: {2, 12},
	DifficultyHard:   {2, 15},
}

func orderOfOperationsRule() *Rule {
	return &Rule{
		Topic:       TopicOrderOfOperations,
		Title:       "Order of operations",
		MaxAttempts: 3,
		Points: map[Difficulty]int{
			DifficultyEasy:   10,
			DifficultyMedium: 15,
			DifficultyHard:   20,
		},
		Variants: map[Difficulty][]Variant{
			DifficultyEasy:   {VariantSumProduct, VariantProductSquare},
			DifficultyMedium: {VariantGroupFirst, VariantGroupLast},
			DifficultyHard:   {VariantNestedOuter, VariantNestedInner},
		},
		Hints: map[Variant]string{
			"": "Parentheses first, then squares, then multiplication, and only then addition and subtraction from left to right.",
		},
		Build: buildOrderOfOperations,
	}
}

func buildOrderOfOperations(v Variant, d Difficulty, src Source) Draft {
	r := orderRanges[d]
	n := func() int { return between(src, r.lo, r.hi) }

	var tree *node
	switch v {
	case VariantProductSquare:
		a, b, c := n(), n(), n()
		tree = add(mul(lit(a), lit(c)), square(lit(b)))
	case VariantGroupFirst:
		a, b, c := n(), n(), n()
		k := between(src, 1, min(r.hi, (a+b)*c))
		tree = sub(mul(add(lit(a), lit(b)), lit(c)), lit(k))
	case VariantGroupLast:
		c := between(src, r.lo, r.hi-1)
		b := between(src, c+1, r.hi)
		a, k := n(), n()
		tree = add(mul(lit(a), sub(lit(b), lit(c))), lit(k))
	case VariantNestedOuter:
		a, b, c := n(), n(), n()
		k := between(src, 1, min(r.hi, (a+b)*c-1))
		e := between(src, 2, 5)
		tree = mul(sub(mul(add(lit(a), lit(b)), lit(c)), lit(k)), lit(e))
	case VariantNestedInner:
		k := between(src, r.lo, r.hi-1)
		c := between(src, k+1, r.hi)
		a, b := n(), n()
		e := between(src, 2, 5)
		tree = mul(lit(a), add(lit(b), mul(sub(lit(c), lit(k)), lit(e))))
	default:
		v = VariantSumProduct
		a, b, c := n(), n(), n()
		tree = add(lit(a), mul(lit(b), lit(c)))
	}
	return arithmeticDraft(v, tree, src)
}

// arithmeticDraft renders the tree, evaluates it, and builds distractors
// from common precedence mistakes on the very same text.
func arithmeticDraft(v Variant, tree *node, src Source) Draft {
	expr := tree.render()
	var steps []string
	value := tree.steps(&steps)
	answer := strconv.Itoa(value)

	var candidates []string
	for _, table := range []map[rune]int{leftToRight, additionFirst} {
		if wrong, err := evalExpression(expr, table); err == nil && wrong >= 0 {
			candidates = append(candidates, strconv.Itoa(wrong))
		}
	}
	if wrong := evalDoubledSquares(tree); wrong != value && wrong >= 0 {
		candidates = append(candidates, strconv.Itoa(wrong))
	}

	pad := func() string {
		delta := between(src, 1, 5)
		if src.IntN(2) == 0 && value-delta >= 0 {
			delta = -delta
		}
		return strconv.Itoa(value + delta)
	}

	return Draft{
		Variant: v,
		Prompt: Prompt{
			Text: expr + " = ?",
		},
		Format:  FormatMultipleChoice,
		Options: buildOptions(src, answer, candidates, orderOfOperationsOptions, pad),
		Answer:  answer,
		Explanation: "Following the order of operations: " +
			strings.Join(steps, "; ") + ". The answer is " + answer + ".",
	}
}

// evalDoubledSquares models reading b² as 2·b.
func evalDoubledSquares(n *node) int {
	switch n.op {
	case 0:
		return n.value
	case '^':
		return 2 * evalDoubledSquares(n.left)
	}
	l, r := evalDoubledSquares(n.left), evalDoubledSquares(n.right)
	return (&node{op: n.op, left: lit(l), right: lit(r)}).eval()
}
