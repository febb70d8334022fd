package problemgen

// Config controls the behavior of the Generator.
type Config struct {
	// Validators is the ordered list of validators to run on every
	// generated exercise. They execute in order; the first failure
	// stops the pipeline.
	Validators []Validator

	// MaxDraws bounds how many times a rule is redrawn after a
	// retryable validation failure.
	MaxDraws int
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&OptionsValidator{},
			&MathCheckValidator{},
		},
		MaxDraws: 8,
	}
}
