package problemgen

import "fmt"

// StructuralValidator checks that the exercise has the fields its format
// needs: prompt text, a canonical answer and, for multi-part exercises, a
// complete set of non-empty parts.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(e *Exercise) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf(format, args...),
			Retryable: true,
		}
	}

	if e.Prompt.Text == "" {
		return fail("empty prompt")
	}
	if Normalize(e.Answer) == "" {
		return fail("empty answer")
	}
	if e.Points <= 0 {
		return fail("points must be positive, got %d", e.Points)
	}
	if e.MaxAttempts < 1 {
		return fail("max attempts must be at least 1, got %d", e.MaxAttempts)
	}

	switch e.Format {
	case FormatMultiPart:
		want := []string{PartX2, PartX, PartC}
		if len(e.Parts) != len(want) {
			return fail("expected %d parts, got %d", len(want), len(e.Parts))
		}
		for i, p := range e.Parts {
			if p.Key != want[i] {
				return fail("part %d: expected key %q, got %q", i, want[i], p.Key)
			}
			if Normalize(p.Value) == "" {
				return fail("part %q is empty", p.Key)
			}
		}
	case FormatFreeText, FormatMultipleChoice:
		if len(e.Parts) != 0 {
			return fail("%s exercise must not carry parts", e.Format)
		}
	default:
		return fail("unknown format %q", e.Format)
	}
	return nil
}
