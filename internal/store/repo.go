package store

import (
	"context"
	"time"
)

// User is the cumulative record of one principal.
type User struct {
	ID                 int       `sql:"id"`
	UID                string    `sql:"uid"`
	Username           string    `sql:"username"`
	Score              int       `sql:"score"`
	CompletedExercises int       `sql:"completed_exercises"`
	CreatedAt          time.Time `sql:"created_at"`
	UpdatedAt          time.Time `sql:"updated_at"`
}

// Standing is one aggregated leaderboard row.
type Standing struct {
	UID                string `sql:"uid"`
	Username           string `sql:"username"`
	Score              int    `sql:"score"`
	CompletedExercises int    `sql:"completed_exercises"`
}

// UserRepo manages cumulative user totals.
type UserRepo interface {
	// EnsureUser creates the user on first sight. A non-empty username
	// replaces the stored one.
	EnsureUser(ctx context.Context, uid, username string) (*User, error)

	// IncrementTotals atomically adds to both counters, creating the user
	// if needed, and returns the updated record.
	IncrementTotals(ctx context.Context, uid, username string, points, exercises int) (*User, error)

	// Totals returns the user's record or ErrNotFound.
	Totals(ctx context.Context, uid string) (*User, error)

	// TopUsers returns users with a positive score, descending; ties go to
	// the earlier update, then username.
	TopUsers(ctx context.Context, limit int) ([]User, error)

	// Rank returns the 1-based position of uid in TopUsers order, or
	// ErrNotFound if uid has not scored.
	Rank(ctx context.Context, uid string) (int, error)
}

// ScoreEventData captures one resolved exercise.
type ScoreEventData struct {
	UID        string
	Username   string
	SessionID  string
	ExerciseID string
	Topic      string
	Difficulty string
	Points     int
	Exercises  int
	Timestamp  time.Time
}

// SessionEventData captures a session start or end.
type SessionEventData struct {
	SessionID          string
	UID                string
	Action             string
	Topics             []string
	Difficulty         string
	ExercisesCompleted int
	CorrectAnswers     int
	Score              int
	DurationSecs       int
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorKind    string
	ErrorMessage string
}

// EventRepo provides append access to domain events and the aggregated
// boards derived from them.
type EventRepo interface {
	// AppendScoreEvent records a resolved exercise. Re-appending the same
	// exercise ID is a no-op.
	AppendScoreEvent(ctx context.Context, data ScoreEventData) error

	// AppendSessionEvent records a session lifecycle event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// TopSince aggregates score events at or after since.
	TopSince(ctx context.Context, since time.Time, limit int) ([]Standing, error)

	// TopForTopic aggregates all score events for one topic.
	TopForTopic(ctx context.Context, topic string, limit int) ([]Standing, error)

	// StandingSince is uid's row of TopSince, or ErrNotFound.
	StandingSince(ctx context.Context, uid string, since time.Time) (*Standing, error)

	// StandingForTopic is uid's row of TopForTopic, or ErrNotFound.
	StandingForTopic(ctx context.Context, uid, topic string) (*Standing, error)

	// RecentSessions returns uid's ended sessions, newest first.
	RecentSessions(ctx context.Context, uid string, limit int) ([]SessionRecord, error)

	// LLMUsage aggregates recorded LLM requests.
	LLMUsage(ctx context.Context) ([]LLMUsage, error)
}
