package session

import (
	"time"

	"github.com/abhisek/mathdrill/internal/problemgen"
)

// Phase represents where the controller is in the practice loop.
type Phase int

const (
	PhaseSelectingTopic Phase = iota // No session; waiting for topic selection
	PhaseAwaitingAnswer              // Exercise shown, accepting answers
	PhaseAwaitingNext                // Exercise resolved, waiting for Next
)

func (p Phase) String() string {
	switch p {
	case PhaseSelectingTopic:
		return "selecting_topic"
	case PhaseAwaitingAnswer:
		return "awaiting_answer"
	case PhaseAwaitingNext:
		return "awaiting_next"
	default:
		return "unknown"
	}
}

// Outcome classifies what a single submission did.
type Outcome int

const (
	OutcomeIgnored   Outcome = iota // No state change
	OutcomeCorrect                  // Resolved with a correct answer
	OutcomeRetry                    // Wrong, attempts remain
	OutcomeExhausted                // Wrong, no attempts left; resolved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeRetry:
		return "retry"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "ignored"
	}
}

// AttemptState is the mutable state of the exercise currently on screen.
// It is replaced on every Next and never persisted.
type AttemptState struct {
	Exercise     *problemgen.Exercise
	AttemptsUsed int
	MaxAttempts  int

	// UserAnswer is the last submitted value. It is cleared after a wrong
	// attempt so the learner can re-enter.
	UserAnswer problemgen.Answer

	// Resolved is terminal: the exercise was answered correctly or ran out
	// of attempts.
	Resolved bool
	Correct  bool

	// HintRevealed becomes true after the first wrong attempt on topics that
	// allow retries.
	HintRevealed bool
	Hint         string

	// RevealedAnswer is the canonical answer, set once the exercise is
	// resolved.
	RevealedAnswer string

	ShownAt time.Time
}

// AttemptsLeft returns how many wrong answers remain before exhaustion.
func (a *AttemptState) AttemptsLeft() int {
	if left := a.MaxAttempts - a.AttemptsUsed; left > 0 {
		return left
	}
	return 0
}

// TopicResult tracks per-topic performance within a single session.
type TopicResult struct {
	Topic     problemgen.Topic
	Attempted int
	Correct   int
	Points    int
}

// SessionTotals accumulates score for one practice session. It is reset
// by End.
type SessionTotals struct {
	Score              int
	ExercisesCompleted int
	Correct            int
	PerTopic           map[problemgen.Topic]*TopicResult
}

func newSessionTotals() SessionTotals {
	return SessionTotals{PerTopic: make(map[problemgen.Topic]*TopicResult)}
}

func (t *SessionTotals) record(topic problemgen.Topic, correct bool, points int) {
	t.ExercisesCompleted++
	tr := t.PerTopic[topic]
	if tr == nil {
		tr = &TopicResult{Topic: topic}
		t.PerTopic[topic] = tr
	}
	tr.Attempted++
	if correct {
		t.Score += points
		t.Correct++
		tr.Correct++
		tr.Points += points
	}
}

func (t SessionTotals) clone() SessionTotals {
	out := t
	out.PerTopic = make(map[problemgen.Topic]*TopicResult, len(t.PerTopic))
	for k, v := range t.PerTopic {
		cp := *v
		out.PerTopic[k] = &cp
	}
	return out
}

// Feedback is the result of one submission, for the presentation layer.
type Feedback struct {
	Outcome       Outcome
	PointsAwarded int
	AttemptsLeft  int

	// Hint is set on OutcomeRetry when the topic has one.
	Hint string

	// Answer and Explanation are set once the exercise is resolved.
	Answer      string
	Explanation string
}

// Snapshot is a copy of the controller state, safe to hold after the
// controller moves on.
type Snapshot struct {
	Phase      Phase
	Topics     []problemgen.Topic
	Difficulty problemgen.Difficulty
	Attempt    AttemptState
	Totals     SessionTotals
	Lifetime   Totals
}
