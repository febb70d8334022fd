package session

import (
	"context"

	"github.com/abhisek/mathdrill/internal/problemgen"
)

// Increment is one score-increment request. Points is never negative and
// Exercises is 0 or 1.
type Increment struct {
	Points     int
	Exercises  int
	Topic      problemgen.Topic
	Difficulty problemgen.Difficulty
	ExerciseID string
	SessionID  string
}

// Totals is the cumulative record of a principal.
type Totals struct {
	Score              int
	CompletedExercises int
}

// ScoreKeeper receives score increments for the signed-in principal.
// IncrementScore must not block on I/O; CurrentTotals returns the keeper's
// best local view.
type ScoreKeeper interface {
	IncrementScore(ctx context.Context, inc Increment)
	CurrentTotals(ctx context.Context) Totals
}

// Explainer fetches a longer explanation for an exercise in the background.
// Consume returns a result only for the exercise it was requested for.
type Explainer interface {
	Request(ctx context.Context, e *problemgen.Exercise, learnerAnswer string)
	Consume(exerciseID string) (string, bool)
	Cancel()
}

// NopKeeper discards increments. Useful for previews and tests.
type NopKeeper struct{}

func (NopKeeper) IncrementScore(context.Context, Increment) {}

func (NopKeeper) CurrentTotals(context.Context) Totals { return Totals{} }
