package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{"type": "string", "description": "rule"},
			"steps": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string"},
			},
			"level": map[string]any{"type": "string", "enum": []any{"easy", "hard"}},
		},
		"required":             []any{"summary", "steps"},
		"additionalProperties": false,
	}

	s := geminiSchema(def)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"summary", "steps"}, s.Required)
	require.Len(t, s.Properties, 3)

	assert.Equal(t, "rule", s.Properties["summary"].Description)
	steps := s.Properties["steps"]
	assert.Equal(t, genai.TypeArray, steps.Type)
	require.NotNil(t, steps.Items)
	assert.Equal(t, genai.TypeString, steps.Items.Type)
	require.NotNil(t, steps.MinItems)
	assert.Equal(t, int64(1), *steps.MinItems)
	assert.Equal(t, []string{"easy", "hard"}, s.Properties["level"].Enum)
}

func TestGeminiSchema_UnknownTypeFallsBackToString(t *testing.T) {
	s := geminiSchema(map[string]any{"type": "null"})
	assert.Equal(t, genai.TypeString, s.Type)
}
