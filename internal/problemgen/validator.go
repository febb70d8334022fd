package problemgen

import "fmt"

// Validator checks a generated exercise for consistency.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for error messages and logging,
	// e.g. "structural", "options", "math-check".
	Name() string

	// Validate returns nil if the exercise passes.
	Validate(e *Exercise) *ValidationError
}

// ValidationError describes why an exercise failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether a fresh draw is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// ValidateExercise runs the chain in order and returns the first failure.
func ValidateExercise(e *Exercise, chain []Validator) *ValidationError {
	for _, v := range chain {
		if verr := v.Validate(e); verr != nil {
			return verr
		}
	}
	return nil
}
