package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/problemgen"
)

// Config wires a Controller to its collaborators. Generator and Keeper
// default to the built-in generator and a NopKeeper.
type Config struct {
	Generator *problemgen.Generator
	Source    problemgen.Source
	Keeper    ScoreKeeper
	Explainer Explainer
}

// Controller is the per-session practice state machine. All methods are
// safe for concurrent use; duplicate submissions resolve an exercise at
// most once.
type Controller struct {
	mu sync.Mutex

	gen       *problemgen.Generator
	src       problemgen.Source
	keeper    ScoreKeeper
	explainer Explainer
	now       func() time.Time

	sessionID  string
	phase      Phase
	topics     []problemgen.Topic
	difficulty problemgen.Difficulty
	attempt    AttemptState
	totals     SessionTotals
	startedAt  time.Time
	lastWrong  string
}

// NewController creates a controller in PhaseSelectingTopic.
func NewController(cfg Config) *Controller {
	if cfg.Generator == nil {
		cfg.Generator = problemgen.New(problemgen.DefaultRegistry(), problemgen.DefaultConfig())
	}
	if cfg.Source == nil {
		cfg.Source = problemgen.NewTimeSource()
	}
	if cfg.Keeper == nil {
		cfg.Keeper = NopKeeper{}
	}
	return &Controller{
		gen:       cfg.Generator,
		src:       cfg.Source,
		keeper:    cfg.Keeper,
		explainer: cfg.Explainer,
		now:       time.Now,
		phase:     PhaseSelectingTopic,
		totals:    newSessionTotals(),
	}
}

// Start begins a session over the given topics and difficulty and shows the
// first exercise. It returns false without changing state when the topic
// set is empty or the difficulty is invalid.
func (c *Controller) Start(topics []problemgen.Topic, d problemgen.Difficulty) bool {
	selected := dedupeTopics(topics)
	if len(selected) == 0 || !d.Valid() {
		logrus.WithFields(logrus.Fields{
			"topics":     len(topics),
			"difficulty": d,
		}).Debug("ignoring session start with invalid selection")
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelExplanation()
	c.sessionID = uuid.NewString()
	c.topics = selected
	c.difficulty = d
	c.totals = newSessionTotals()
	c.startedAt = c.now()
	c.drawLocked()

	logrus.WithFields(logrus.Fields{
		"session_id": c.sessionID,
		"topics":     selected,
		"difficulty": d,
	}).Info("practice session started")
	return true
}

// Submit evaluates a single-field answer.
func (c *Controller) Submit(ctx context.Context, text string) Feedback {
	return c.submit(ctx, problemgen.TextAnswer(text))
}

// SubmitParts evaluates a multi-part answer keyed by part key.
func (c *Controller) SubmitParts(ctx context.Context, parts map[string]string) Feedback {
	return c.submit(ctx, problemgen.PartsAnswer(parts))
}

func (c *Controller) submit(ctx context.Context, a problemgen.Answer) Feedback {
	c.mu.Lock()
	fb, inc, ok := c.submitLocked(a)
	c.mu.Unlock()

	if ok {
		c.keeper.IncrementScore(ctx, inc)
	}
	return fb
}

// submitLocked applies one submission and returns the increment to emit,
// if any. The caller holds c.mu.
func (c *Controller) submitLocked(a problemgen.Answer) (Feedback, Increment, bool) {
	at := &c.attempt
	if c.phase != PhaseAwaitingAnswer || at.Exercise == nil || at.Resolved || problemgen.IsBlank(a) {
		return Feedback{Outcome: OutcomeIgnored, AttemptsLeft: at.AttemptsLeft()}, Increment{}, false
	}

	e := at.Exercise
	at.UserAnswer = a
	inc := Increment{
		Exercises:  1,
		Topic:      e.Topic,
		Difficulty: e.Difficulty,
		ExerciseID: e.ID,
		SessionID:  c.sessionID,
	}

	if problemgen.CheckAnswer(e, a) {
		at.Resolved = true
		at.Correct = true
		at.RevealedAnswer = e.Answer
		c.phase = PhaseAwaitingNext
		c.totals.record(e.Topic, true, e.Points)
		inc.Points = e.Points
		return Feedback{
			Outcome:       OutcomeCorrect,
			PointsAwarded: e.Points,
			Answer:        e.Answer,
			Explanation:   e.Explanation,
		}, inc, true
	}

	at.AttemptsUsed++
	c.lastWrong = answerText(a)
	if at.AttemptsUsed >= at.MaxAttempts {
		at.Resolved = true
		at.RevealedAnswer = e.Answer
		c.phase = PhaseAwaitingNext
		c.totals.record(e.Topic, false, 0)
		return Feedback{
			Outcome:     OutcomeExhausted,
			Answer:      e.Answer,
			Explanation: e.Explanation,
		}, inc, true
	}

	at.UserAnswer = problemgen.Answer{}
	if at.Hint != "" {
		at.HintRevealed = true
	}
	return Feedback{
		Outcome:      OutcomeRetry,
		AttemptsLeft: at.AttemptsLeft(),
		Hint:         at.Hint,
	}, Increment{}, false
}

// Next draws a new exercise once the current one is resolved. It returns
// false if the current exercise is still open or no session is active.
func (c *Controller) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseAwaitingNext || !c.attempt.Resolved {
		return false
	}
	c.cancelExplanation()
	c.drawLocked()
	return true
}

// End finishes the session, resets the session totals and returns to topic
// selection. It returns the summary of the finished session, or nil if no
// session was active.
func (c *Controller) End() *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseSelectingTopic {
		return nil
	}
	c.cancelExplanation()
	summary := buildSummary(c.sessionID, c.topics, c.difficulty, c.totals, c.now().Sub(c.startedAt))

	logrus.WithFields(logrus.Fields{
		"session_id": c.sessionID,
		"score":      summary.Score,
		"exercises":  summary.ExercisesCompleted,
	}).Info("practice session ended")

	c.phase = PhaseSelectingTopic
	c.topics = nil
	c.attempt = AttemptState{}
	c.totals = newSessionTotals()
	c.lastWrong = ""
	return summary
}

// State returns a copy of the current controller state.
func (c *Controller) State(ctx context.Context) Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		Phase:      c.phase,
		Topics:     append([]problemgen.Topic(nil), c.topics...),
		Difficulty: c.difficulty,
		Attempt:    c.attempt,
		Totals:     c.totals.clone(),
	}
	c.mu.Unlock()

	snap.Lifetime = c.keeper.CurrentTotals(ctx)
	return snap
}

// SessionID returns the current session ID, or "" between sessions.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseSelectingTopic {
		return ""
	}
	return c.sessionID
}

// RequestExplanation asks the explainer for a longer explanation of the
// current exercise. It is a no-op without an explainer or exercise.
func (c *Controller) RequestExplanation(ctx context.Context) bool {
	c.mu.Lock()
	e := c.attempt.Exercise
	learner := c.lastWrong
	if c.attempt.Correct {
		learner = answerText(c.attempt.UserAnswer)
	}
	c.mu.Unlock()

	if c.explainer == nil || e == nil {
		return false
	}
	c.explainer.Request(ctx, e, learner)
	return true
}

// Explanation returns the fetched explanation for the exercise on screen.
// Results for earlier exercises are never returned.
func (c *Controller) Explanation() (string, bool) {
	c.mu.Lock()
	e := c.attempt.Exercise
	c.mu.Unlock()

	if c.explainer == nil || e == nil {
		return "", false
	}
	return c.explainer.Consume(e.ID)
}

// Hint returns the hint for the current exercise once a wrong attempt has
// revealed it, and "" before that.
func (c *Controller) Hint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.attempt.HintRevealed {
		return ""
	}
	return c.attempt.Hint
}

func (c *Controller) drawLocked() {
	topic := c.topics[c.src.IntN(len(c.topics))]
	e := c.gen.Generate(topic, c.difficulty, c.src)
	c.attempt = AttemptState{
		Exercise:    e,
		MaxAttempts: e.MaxAttempts,
		Hint:        c.gen.HintFor(e),
		ShownAt:     c.now(),
	}
	c.lastWrong = ""
	c.phase = PhaseAwaitingAnswer

	logrus.WithFields(logrus.Fields{
		"session_id":  c.sessionID,
		"exercise_id": e.ID,
		"topic":       e.Topic,
		"variant":     e.Variant,
	}).Debug("exercise drawn")
}

func (c *Controller) cancelExplanation() {
	if c.explainer != nil {
		c.explainer.Cancel()
	}
}

func dedupeTopics(topics []problemgen.Topic) []problemgen.Topic {
	seen := make(map[problemgen.Topic]bool, len(topics))
	var out []problemgen.Topic
	for _, t := range topics {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func answerText(a problemgen.Answer) string {
	if len(a.Parts) == 0 {
		return a.Text
	}
	text := ""
	for _, k := range []string{problemgen.PartX2, problemgen.PartX, problemgen.PartC} {
		if v, ok := a.Parts[k]; ok {
			if text != "" {
				text += ", "
			}
			text += k + "=" + v
		}
	}
	return text
}
