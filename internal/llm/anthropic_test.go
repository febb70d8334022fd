package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(
		AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	require.NoError(t, err)
	return p
}

func anthropicReply(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 40, "output_tokens": 12},
	}
}

func TestAnthropic_FreeText(t *testing.T) {
	var body map[string]any
	p := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicReply("Multiply first.", "end_turn"))
	})

	resp, err := p.Generate(context.Background(), Ask("Be brief.", "Why is 4 + 3 × 2 ten?"))
	require.NoError(t, err)
	assert.Equal(t, "Multiply first.", resp.Text())
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, 52, resp.Usage.Total())
	assert.Equal(t, "claude-haiku-4-5-20251001", p.ModelID())
	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
}

func TestAnthropic_StructuredReply(t *testing.T) {
	p := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicReply(`{"answer":"14"}`, "end_turn"))
	})

	req := Ask("", "Solve 2 + 3 × 4.")
	req.Schema = answerSchema
	resp, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"14"}`, string(resp.Content))
}

func TestAnthropic_TruncatedStructuredReply(t *testing.T) {
	p := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicReply(`{"answ`, "max_tokens"))
	})

	req := Ask("", "Solve 2 + 3 × 4.")
	req.Schema = answerSchema
	_, err := p.Generate(context.Background(), req)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindTruncated, kind)
}

func TestAnthropic_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{"rate limited", http.StatusTooManyRequests, KindRateLimited},
		{"overloaded", http.StatusInternalServerError, KindUnavailable},
		{"bad request", http.StatusBadRequest, KindRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": "api_error", "message": "nope"},
				})
			})

			_, err := p.Generate(context.Background(), Ask("", "hi"))
			var le *Error
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.kind, le.Kind)
			assert.Equal(t, ProviderAnthropic, le.Provider)
			assert.Equal(t, 2*time.Second, le.RetryAfter)
		})
	}
}

func TestAnthropic_RequiresKey(t *testing.T) {
	_, err := NewAnthropicProvider(AnthropicConfig{})
	assert.Error(t, err)
}
