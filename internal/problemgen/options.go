package problemgen

import "fmt"

// OptionsValidator checks multiple-choice constraints: at least two
// options, no duplicates after normalization, and the canonical answer
// present exactly once. Other formats must not carry options.
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

func (v *OptionsValidator) Validate(e *Exercise) *ValidationError {
	if e.Format != FormatMultipleChoice {
		if len(e.Options) != 0 {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("%s exercise has %d options", e.Format, len(e.Options)),
				Retryable: true,
			}
		}
		return nil
	}

	if len(e.Options) < 2 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected at least 2 options, got %d", len(e.Options)),
			Retryable: true,
		}
	}

	answer := Normalize(e.Answer)
	seen := make(map[string]bool, len(e.Options))
	hits := 0
	for _, opt := range e.Options {
		n := Normalize(opt)
		if n == "" {
			return &ValidationError{Validator: v.Name(), Message: "empty option", Retryable: true}
		}
		if seen[n] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("duplicate option %q", opt),
				Retryable: true,
			}
		}
		seen[n] = true
		if n == answer {
			hits++
		}
	}
	if hits != 1 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("answer %q appears %d times in options", e.Answer, hits),
			Retryable: true,
		}
	}
	return nil
}

// buildOptions returns answer plus up to n-1 distinct distractors in a
// shuffled order. Candidates are taken in order, so earlier ones win; pad
// supplies more when the candidates run out.
func buildOptions(src Source, answer string, candidates []string, n int, pad func() string) []string {
	seen := map[string]bool{Normalize(answer): true}
	opts := []string{answer}
	add := func(c string) {
		k := Normalize(c)
		if k == "" || seen[k] || len(opts) >= n {
			return
		}
		seen[k] = true
		opts = append(opts, c)
	}
	for _, c := range candidates {
		add(c)
	}
	for tries := 0; len(opts) < n && pad != nil && tries < 64; tries++ {
		add(pad())
	}
	shuffle(src, opts)
	return opts
}
