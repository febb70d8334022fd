package store

import (
	"context"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.s.appendEvent(ctx, func(seq int64) *entsql.InsertBuilder {
		return builder().Insert("session_events").
			Set("sequence", seq).
			Set("timestamp", r.s.now()).
			Set("session_id", data.SessionID).
			Set("uid", data.UID).
			Set("action", data.Action).
			Set("topics", strings.Join(data.Topics, ",")).
			Set("difficulty", data.Difficulty).
			Set("exercises_completed", data.ExercisesCompleted).
			Set("correct_answers", data.CorrectAnswers).
			Set("score", data.Score).
			Set("duration_secs", data.DurationSecs)
	})
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}
