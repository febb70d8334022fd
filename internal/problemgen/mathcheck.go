package problemgen

import (
	"errors"
	"fmt"
	"strconv"
)

// MathCheckValidator independently recomputes arithmetic answers by parsing
// the prompt text under standard precedence. Prompts that are not pure
// arithmetic (algebra, geometry) pass through silently.
type MathCheckValidator struct{}

func (v *MathCheckValidator) Name() string { return "math-check" }

func (v *MathCheckValidator) Validate(e *Exercise) *ValidationError {
	if e.Topic != TopicOrderOfOperations {
		return nil
	}
	computed, err := evalExpression(e.Prompt.Text, standardPrecedence)
	if errors.Is(err, errNotExpression) {
		return nil
	}
	if err != nil {
		return &ValidationError{Validator: v.Name(), Message: err.Error(), Retryable: true}
	}
	if Normalize(strconv.Itoa(computed)) != Normalize(e.Answer) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("computed %d but exercise claims %q", computed, e.Answer),
			Retryable: true,
		}
	}
	return nil
}
