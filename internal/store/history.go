package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// SessionRecord is one stored session lifecycle event.
type SessionRecord struct {
	Sequence           int64     `sql:"sequence"`
	Timestamp          time.Time `sql:"timestamp"`
	SessionID          string    `sql:"session_id"`
	UID                string    `sql:"uid"`
	Action             string    `sql:"action"`
	Topics             string    `sql:"topics"`
	Difficulty         string    `sql:"difficulty"`
	ExercisesCompleted int       `sql:"exercises_completed"`
	CorrectAnswers     int       `sql:"correct_answers"`
	Score              int       `sql:"score"`
	DurationSecs       int       `sql:"duration_secs"`
}

// LLMUsage aggregates LLM requests per provider, model and purpose.
type LLMUsage struct {
	Provider     string `sql:"provider"`
	Model        string `sql:"model"`
	Purpose      string `sql:"purpose"`
	Requests     int    `sql:"requests"`
	Failures     int    `sql:"failures"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
	AvgLatencyMs int64  `sql:"avg_latency_ms"`
}

func (r *eventRepo) RecentSessions(ctx context.Context, uid string, limit int) ([]SessionRecord, error) {
	sel := builder().Select(
		"sequence", "timestamp", "session_id", "uid", "action", "topics", "difficulty",
		"exercises_completed", "correct_answers", "score", "duration_secs",
	).
		From(builder().Table("session_events")).
		Where(entsql.And(entsql.EQ("uid", uid), entsql.EQ("action", "end"))).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}

	var out []SessionRecord
	if err := scanAll(ctx, r.s.drv, sel, &out); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LLMUsage(ctx context.Context) ([]LLMUsage, error) {
	sel := builder().Select(
		"provider", "model", "purpose",
		entsql.As(entsql.Count("*"), "requests"),
		entsql.As("SUM(CASE WHEN `success` THEN 0 ELSE 1 END)", "failures"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As("CAST(AVG(`latency_ms`) AS INTEGER)", "avg_latency_ms"),
	).
		From(builder().Table("llm_request_events")).
		GroupBy("provider", "model", "purpose").
		OrderBy("provider", "model", "purpose")

	var out []LLMUsage
	if err := scanAll(ctx, r.s.drv, sel, &out); err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	return out, nil
}
