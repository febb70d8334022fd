package problemgen

import (
	"strconv"
	"strings"
	"unicode"
)

// CheckAnswer compares a candidate against the exercise's canonical answer.
//
// Normalization rules:
// - All whitespace is removed ("6x + 10" matches "6x+10")
// - Comparison is case-insensitive
// - "^2" and "²" are interchangeable
// - Integer values ignore leading zeros and a leading "+"
//
// Multi-part exercises compare every part independently and require all of
// them to match. A candidate of the wrong shape never matches.
func CheckAnswer(e *Exercise, a Answer) bool {
	if e.Format == FormatMultiPart {
		if len(a.Parts) == 0 {
			return false
		}
		for _, p := range e.Parts {
			got := Normalize(a.Parts[p.Key])
			if got == "" || got != Normalize(p.Value) {
				return false
			}
		}
		return true
	}

	got := Normalize(a.Text)
	if got == "" {
		return false
	}
	return got == Normalize(e.Answer)
}

// IsBlank reports whether the candidate carries no input at all. A
// candidate of the wrong shape is not blank; it is a wrong answer.
func IsBlank(a Answer) bool {
	if Normalize(a.Text) != "" {
		return false
	}
	for _, v := range a.Parts {
		if Normalize(v) != "" {
			return false
		}
	}
	return true
}

// Normalize returns the comparison form of an answer string.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if r == '−' {
			r = '-'
		}
		b.WriteRune(unicode.ToLower(r))
	}
	out := strings.ReplaceAll(b.String(), "^2", "²")
	if n, err := strconv.Atoi(out); err == nil {
		return strconv.Itoa(n)
	}
	return out
}

// formatPolynomial renders a2·x² + a1·x + a0 in fixed term order. Zero
// terms are dropped and unit coefficients on x terms are elided.
func formatPolynomial(a2, a1, a0 int) string {
	var b strings.Builder
	writeTerm := func(coef int, suffix string) {
		if coef == 0 {
			return
		}
		mag := coef
		if mag < 0 {
			mag = -mag
		}
		switch {
		case b.Len() == 0 && coef < 0:
			b.WriteString("-")
		case b.Len() > 0 && coef < 0:
			b.WriteString(" - ")
		case b.Len() > 0:
			b.WriteString(" + ")
		}
		if mag != 1 || suffix == "" {
			b.WriteString(strconv.Itoa(mag))
		}
		b.WriteString(suffix)
	}
	writeTerm(a2, "x²")
	writeTerm(a1, "x")
	writeTerm(a0, "")
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}

// linearTerm renders coef·x with a unit coefficient elided.
func linearTerm(coef int) string {
	switch coef {
	case 1:
		return "x"
	case -1:
		return "-x"
	}
	return strconv.Itoa(coef) + "x"
}
