package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var answerSchema = &Schema{
	Name: "answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{"type": "string"},
		},
		"required":             []any{"answer"},
		"additionalProperties": false,
	},
}

// stubVendor returns a fixed reply.
type stubVendor struct {
	resp *Response
}

func (s stubVendor) name() string  { return "stub" }
func (s stubVendor) model() string { return "stub-1" }
func (s stubVendor) complete(context.Context, Request) (*Response, error) {
	return s.resp, nil
}

func TestStructured(t *testing.T) {
	tests := []struct {
		name    string
		content string
		stop    StopReason
		schema  *Schema
		kind    ErrorKind
		wantErr bool
	}{
		{name: "free text passes through", content: `"anything"`, stop: StopEnd},
		{name: "free text ignores max tokens", content: `"cut off"`, stop: StopMaxTokens},
		{name: "conforming reply", content: `{"answer":"7"}`, stop: StopEnd, schema: answerSchema},
		{name: "missing field", content: `{}`, stop: StopEnd, schema: answerSchema, kind: KindInvalidResponse, wantErr: true},
		{name: "extra field", content: `{"answer":"7","why":"x"}`, stop: StopEnd, schema: answerSchema, kind: KindInvalidResponse, wantErr: true},
		{name: "not json", content: `seven`, stop: StopEnd, schema: answerSchema, kind: KindInvalidResponse, wantErr: true},
		{name: "truncated", content: `{"answer":"7"}`, stop: StopMaxTokens, schema: answerSchema, kind: KindTruncated, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := structured{v: stubVendor{resp: &Response{Content: json.RawMessage(tt.content), StopReason: tt.stop}}}
			req := Ask("", "q")
			req.Schema = tt.schema

			resp, err := p.Generate(context.Background(), req)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.content, string(resp.Content))
				return
			}
			var le *Error
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.kind, le.Kind)
			assert.Equal(t, "stub", le.Provider)
		})
	}
	assert.Equal(t, "stub-1", structured{v: stubVendor{}}.ModelID())
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku"))
	assert.Equal(t, "gemini-2.0-flash", resolveModel("Gemini-Flash"))
	assert.Equal(t, "my-finetune", resolveModel("my-finetune"))
}

func TestKindOf(t *testing.T) {
	_, ok := KindOf(context.Canceled)
	assert.False(t, ok)

	err := statusError("x", 429, nil)
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindRateLimited, kind)
	assert.Equal(t, "llm x: rate-limited", err.Error())
}
