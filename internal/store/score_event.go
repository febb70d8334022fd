package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendScoreEvent(ctx context.Context, data ScoreEventData) error {
	if data.Points < 0 || data.Exercises < 0 {
		return fmt.Errorf("save score event: negative delta (%d, %d)", data.Points, data.Exercises)
	}
	ts := data.Timestamp
	if ts.IsZero() {
		ts = r.s.now()
	}

	err := r.s.appendEvent(ctx, func(seq int64) *entsql.InsertBuilder {
		return builder().Insert("score_events").
			Set("sequence", seq).
			Set("timestamp", ts.UTC()).
			Set("uid", data.UID).
			Set("username", data.Username).
			Set("session_id", data.SessionID).
			Set("exercise_id", data.ExerciseID).
			Set("topic", data.Topic).
			Set("difficulty", data.Difficulty).
			Set("points", data.Points).
			Set("exercises", data.Exercises).
			OnConflict(entsql.ConflictColumns("exercise_id"), entsql.DoNothing())
	})
	if err != nil {
		return fmt.Errorf("save score event: %w", err)
	}
	return nil
}

func (r *eventRepo) TopSince(ctx context.Context, since time.Time, limit int) ([]Standing, error) {
	return r.standings(ctx, entsql.GTE("timestamp", since.UTC()), limit)
}

func (r *eventRepo) TopForTopic(ctx context.Context, topic string, limit int) ([]Standing, error) {
	return r.standings(ctx, entsql.EQ("topic", topic), limit)
}

func (r *eventRepo) StandingSince(ctx context.Context, uid string, since time.Time) (*Standing, error) {
	return r.standingFor(ctx, uid, entsql.GTE("timestamp", since.UTC()))
}

func (r *eventRepo) StandingForTopic(ctx context.Context, uid, topic string) (*Standing, error) {
	return r.standingFor(ctx, uid, entsql.EQ("topic", topic))
}

func (r *eventRepo) standingFor(ctx context.Context, uid string, where *entsql.Predicate) (*Standing, error) {
	rows, err := r.standings(ctx, entsql.And(where, entsql.EQ("uid", uid)), 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// standings aggregates score events per user. Ties go to whoever reached
// the score first, then username.
func (r *eventRepo) standings(ctx context.Context, where *entsql.Predicate, limit int) ([]Standing, error) {
	sel := builder().Select(
		"uid",
		entsql.As(entsql.Max("username"), "username"),
		entsql.As(entsql.Sum("points"), "score"),
		entsql.As(entsql.Sum("exercises"), "completed_exercises"),
	).
		From(builder().Table("score_events")).
		Where(where).
		GroupBy("uid").
		OrderBy(entsql.Desc("score"), "MAX(`sequence`)", entsql.Asc("username"))
	if limit > 0 {
		sel.Limit(limit)
	}

	var out []Standing
	if err := scanAll(ctx, r.s.drv, sel, &out); err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	return out, nil
}
