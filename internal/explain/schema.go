package explain

import "github.com/abhisek/mathdrill/internal/llm"

// ExplanationSchema defines the JSON schema for worked explanations.
var ExplanationSchema = &llm.Schema{
	Name:        "worked-explanation",
	Description: "A step-by-step explanation of an exercise's solution",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "One sentence naming the rule that solves the exercise",
			},
			"steps": map[string]any{
				"type":        "array",
				"minItems":    1,
				"items":       map[string]any{"type": "string"},
				"description": "Ordered solution steps, one short line each",
			},
			"mistake": map[string]any{
				"type":        "string",
				"description": "What the learner's answer got wrong, empty when it was right",
			},
		},
		"required":             []any{"summary", "steps", "mistake"},
		"additionalProperties": false,
	},
}
