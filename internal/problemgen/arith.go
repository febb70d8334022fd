package problemgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// node is an integer expression tree. The tree shape is the evaluation
// order; render inserts exactly the parentheses standard precedence needs
// to read the same tree back.
type node struct {
	op          byte // 0 literal, '+', '-', '*', '^' (square)
	value       int
	left, right *node
}

func lit(v int) *node      { return &node{value: v} }
func add(l, r *node) *node { return &node{op: '+', left: l, right: r} }
func sub(l, r *node) *node { return &node{op: '-', left: l, right: r} }
func mul(l, r *node) *node { return &node{op: '*', left: l, right: r} }
func square(x *node) *node { return &node{op: '^', left: x} }

func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*':
		return 2
	case '^':
		return 3
	}
	return 4
}

func symbol(op byte) string {
	if op == '*' {
		return "×"
	}
	return string(op)
}

func (n *node) eval() int {
	switch n.op {
	case '+':
		return n.left.eval() + n.right.eval()
	case '-':
		return n.left.eval() - n.right.eval()
	case '*':
		return n.left.eval() * n.right.eval()
	case '^':
		v := n.left.eval()
		return v * v
	}
	return n.value
}

func (n *node) render() string {
	switch n.op {
	case 0:
		return strconv.Itoa(n.value)
	case '^':
		if n.left.op != 0 {
			return "(" + n.left.render() + ")²"
		}
		return n.left.render() + "²"
	}

	p := precedence(n.op)
	l := n.left.render()
	if precedence(n.left.op) < p {
		l = "(" + l + ")"
	}
	r := n.right.render()
	if rp := precedence(n.right.op); rp < p || (rp == p && n.op == '-') {
		r = "(" + r + ")"
	}
	return l + " " + symbol(n.op) + " " + r
}

// steps evaluates n and appends one worked line per operation, innermost first.
func (n *node) steps(out *[]string) int {
	switch n.op {
	case 0:
		return n.value
	case '^':
		v := n.left.steps(out)
		*out = append(*out, fmt.Sprintf("%d² = %d", v, v*v))
		return v * v
	}
	l := n.left.steps(out)
	r := n.right.steps(out)
	v := (&node{op: n.op, left: lit(l), right: lit(r)}).eval()
	*out = append(*out, fmt.Sprintf("%d %s %d = %d", l, symbol(n.op), r, v))
	return v
}

// Operator tables for evalExpression. Standard precedence is what the
// prompt means; the others model common learner mistakes.
var (
	standardPrecedence = map[rune]int{'+': 1, '-': 1, '×': 2}
	leftToRight        = map[rune]int{'+': 1, '-': 1, '×': 1}
	additionFirst      = map[rune]int{'+': 2, '-': 2, '×': 1}
)

var errNotExpression = errors.New("not an arithmetic expression")

type token struct {
	op  rune // 0 for numbers
	num int
}

// tokenize reads an arithmetic prompt up to an optional "=". Only
// non-negative integer literals, + - × * ( ) and ² are accepted.
func tokenize(text string) ([]token, error) {
	if i := strings.IndexRune(text, '='); i >= 0 {
		text = text[:i]
	}
	var toks []token
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t':
		case r >= '0' && r <= '9':
			j := i
			for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
				j++
			}
			n, err := strconv.Atoi(string(runes[i:j]))
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{num: n})
			i = j - 1
		case r == '*' || r == '×':
			toks = append(toks, token{op: '×'})
		case r == '+' || r == '-' || r == '(' || r == ')' || r == '²':
			toks = append(toks, token{op: r})
		default:
			return nil, fmt.Errorf("%w: unexpected %q", errNotExpression, r)
		}
	}
	if len(toks) == 0 {
		return nil, errNotExpression
	}
	return toks, nil
}

// evalExpression evaluates text using the given binary operator table.
// Parentheses and the postfix square always bind tightest.
func evalExpression(text string, table map[rune]int) (int, error) {
	toks, err := tokenize(text)
	if err != nil {
		return 0, err
	}
	p := &exprParser{toks: toks, table: table}
	v, err := p.parse(1)
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.toks) {
		return 0, fmt.Errorf("%w: trailing input", errNotExpression)
	}
	return v, nil
}

type exprParser struct {
	toks  []token
	pos   int
	table map[rune]int
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

// parse is precedence climbing over left-associative binary operators.
func (p *exprParser) parse(minPrec int) (int, error) {
	lhs, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		t, ok := p.peek()
		if !ok {
			return lhs, nil
		}
		prec, isBinary := p.table[t.op]
		if !isBinary || prec < minPrec {
			return lhs, nil
		}
		p.pos++
		rhs, err := p.parse(prec + 1)
		if err != nil {
			return 0, err
		}
		switch t.op {
		case '+':
			lhs += rhs
		case '-':
			lhs -= rhs
		case '×':
			lhs *= rhs
		}
	}
}

func (p *exprParser) unary() (int, error) {
	t, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("%w: unexpected end", errNotExpression)
	}
	var v int
	switch {
	case t.op == 0:
		p.pos++
		v = t.num
	case t.op == '(':
		p.pos++
		inner, err := p.parse(1)
		if err != nil {
			return 0, err
		}
		if c, ok := p.peek(); !ok || c.op != ')' {
			return 0, fmt.Errorf("%w: missing )", errNotExpression)
		}
		p.pos++
		v = inner
	default:
		return 0, fmt.Errorf("%w: unexpected %q", errNotExpression, t.op)
	}
	for {
		t, ok := p.peek()
		if !ok || t.op != '²' {
			return v, nil
		}
		p.pos++
		v *= v
	}
}
