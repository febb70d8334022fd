package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent's SQL builder. Every append
// takes the next global sequence number.
type eventRepo struct {
	s *Store
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.s.appendEvent(ctx, func(seq int64) *entsql.InsertBuilder {
		return builder().Insert("llm_request_events").
			Set("sequence", seq).
			Set("timestamp", r.s.now()).
			Set("provider", data.Provider).
			Set("model", data.Model).
			Set("purpose", data.Purpose).
			Set("input_tokens", data.InputTokens).
			Set("output_tokens", data.OutputTokens).
			Set("latency_ms", data.LatencyMs).
			Set("success", data.Success).
			Set("error_kind", data.ErrorKind).
			Set("error_message", data.ErrorMessage)
	})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}
