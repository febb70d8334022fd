package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/events"
	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/leaderboard"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/scoring"
	"github.com/abhisek/mathdrill/internal/session"
)

const explanationPoll = 100 * time.Millisecond

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type startPayload struct {
	Topics     []string `json:"topics" validate:"required,min=1,dive,required"`
	Difficulty string   `json:"difficulty" validate:"required,difficulty"`
}

type answerPayload struct {
	Text  string            `json:"text"`
	Parts map[string]string `json:"parts"`
}

type totalsView struct {
	Score              int `json:"score"`
	CompletedExercises int `json:"completed_exercises"`
}

type readyPayload struct {
	Principal identity.Principal `json:"principal"`
	Totals    totalsView         `json:"totals"`
}

type partLabel struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type exerciseView struct {
	ID           string            `json:"id"`
	SessionID    string            `json:"session_id"`
	Topic        string            `json:"topic"`
	Difficulty   string            `json:"difficulty"`
	Prompt       problemgen.Prompt `json:"prompt"`
	Format       string            `json:"format"`
	Options      []string          `json:"options,omitempty"`
	Parts        []partLabel       `json:"parts,omitempty"`
	Points       int               `json:"points"`
	AttemptsLeft int               `json:"attempts_left"`
}

type feedbackView struct {
	ExerciseID    string     `json:"exercise_id"`
	Outcome       string     `json:"outcome"`
	PointsAwarded int        `json:"points_awarded"`
	AttemptsLeft  int        `json:"attempts_left"`
	Hint          string     `json:"hint,omitempty"`
	Answer        string     `json:"answer,omitempty"`
	Explanation   string     `json:"explanation,omitempty"`
	SessionScore  int        `json:"session_score"`
	Totals        totalsView `json:"totals"`
}

type textPayload struct {
	ExerciseID string `json:"exercise_id,omitempty"`
	Text       string `json:"text"`
}

type topicResultView struct {
	Topic     string `json:"topic"`
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
	Points    int    `json:"points"`
}

type summaryView struct {
	SessionID          string            `json:"session_id"`
	Difficulty         string            `json:"difficulty"`
	DurationSecs       int               `json:"duration_secs"`
	Score              int               `json:"score"`
	ExercisesCompleted int               `json:"exercises_completed"`
	Correct            int               `json:"correct"`
	Accuracy           float64           `json:"accuracy"`
	Topics             []topicResultView `json:"topics"`
}

// wsSession is one connected learner.
type wsSession struct {
	s         *Server
	ctx       context.Context
	principal identity.Principal
	keeper    *scoring.Keeper
	ctrl      *session.Controller
	log       *logrus.Entry

	send         chan outboundMessage[any]
	closeSignals chan struct{}
	writerDone   chan struct{}
	helpers      sync.WaitGroup

	mu    sync.Mutex
	watch leaderboard.Query
}

// ServeWS authenticates the request, upgrades it to a websocket and runs a
// practice session over it until the client disconnects.
func (s *Server) ServeWS(c *gin.Context) {
	p, err := s.cfg.Tokens.Verify(tokenFrom(c.Request))
	if err != nil {
		abortUnauthorized(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	log := logrus.WithField("uid", p.UID)
	keeper, err := scoring.NewKeeper(ctx, scoring.Config{
		Principal: p,
		Users:     s.cfg.Users,
		Events:    s.cfg.Events,
		Publisher: s.cfg.Publisher,
	})
	if err != nil {
		log.WithError(err).Error("Failed to start score keeper")
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "failed to load your progress"}})
		return
	}
	defer keeper.Close()

	var explainer session.Explainer
	if s.cfg.NewExplainer != nil {
		explainer = s.cfg.NewExplainer()
	}

	ws := &wsSession{
		s:         s,
		ctx:       ctx,
		principal: p,
		keeper:    keeper,
		ctrl: session.NewController(session.Config{
			Generator: s.cfg.Generator,
			Keeper:    keeper,
			Explainer: explainer,
		}),
		log:          log,
		send:         make(chan outboundMessage[any], 16),
		closeSignals: make(chan struct{}),
		writerDone:   make(chan struct{}),
		watch:        leaderboard.Query{Board: leaderboard.BoardAllTime},
	}
	defer ws.endSession()

	go func() {
		defer close(ws.writerDone)
		for msg := range ws.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("Websocket write failed")
				conn.Close()
				return
			}
		}
	}()

	sub, unsubscribe := s.hub.subscribe()
	defer unsubscribe()
	ws.helpers.Add(1)
	go func() {
		defer ws.helpers.Done()
		for {
			select {
			case ev := <-sub.updates:
				ws.boardChanged(ev)
			case <-sub.quit:
				conn.Close()
				return
			case <-ws.closeSignals:
				return
			}
		}
	}()

	totals := keeper.CurrentTotals(ctx)
	ws.emit("ready", readyPayload{Principal: p, Totals: totalsView(totals)})
	log.Info("Practice connection opened")

	for {
		var in inboundMessage
		if err := conn.ReadJSON(&in); err != nil {
			break
		}
		ws.handle(in)
	}

	close(ws.closeSignals)
	ws.helpers.Wait()
	close(ws.send)
	<-ws.writerDone
	log.Info("Practice connection closed")
}

func (ws *wsSession) handle(in inboundMessage) {
	switch in.Type {
	case "start":
		ws.start(in.Payload)
	case "answer":
		ws.answer(in.Payload)
	case "next":
		if !ws.ctrl.Next() {
			ws.fail("the current exercise is not resolved yet", nil)
			return
		}
		ws.emitExercise()
	case "hint":
		if hint := ws.ctrl.Hint(); hint != "" {
			ws.emit("hint", textPayload{Text: hint})
		} else {
			ws.fail("the hint unlocks after a wrong answer", nil)
		}
	case "explain":
		ws.explain()
	case "end":
		summary := ws.endSession()
		if summary == nil {
			ws.fail("no active session", nil)
			return
		}
		ws.emit("summary", newSummaryView(summary))
	case "leaderboard":
		ws.leaderboard(in.Payload)
	default:
		ws.fail("unsupported message type", nil)
	}
}

func (ws *wsSession) start(raw json.RawMessage) {
	var payload startPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		ws.fail("invalid start payload", nil)
		return
	}
	if err := ws.s.validate.Struct(payload); err != nil {
		ws.fail("validation failed", validationDetails(err))
		return
	}

	reg := ws.s.cfg.Generator.Registry()
	topics := make([]problemgen.Topic, len(payload.Topics))
	for i, name := range payload.Topics {
		// Unknown topics are kept; the generator serves them with its
		// fallback.
		topics[i], _ = reg.ParseTopic(name)
	}
	d, _ := problemgen.ParseDifficulty(payload.Difficulty)

	ws.endSession()
	if !ws.ctrl.Start(topics, d) {
		ws.fail("could not start a session", nil)
		return
	}
	if err := ws.keeper.RecordStart(ws.ctx, ws.ctrl.SessionID(), topics, d); err != nil {
		ws.log.WithError(err).Warn("Failed to record session start")
	}
	ws.emitExercise()
}

func (ws *wsSession) answer(raw json.RawMessage) {
	var payload answerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		ws.fail("invalid answer payload", nil)
		return
	}

	var fb session.Feedback
	if len(payload.Parts) > 0 {
		fb = ws.ctrl.SubmitParts(ws.ctx, payload.Parts)
	} else {
		fb = ws.ctrl.Submit(ws.ctx, payload.Text)
	}

	snap := ws.ctrl.State(ws.ctx)
	view := feedbackView{
		Outcome:       fb.Outcome.String(),
		PointsAwarded: fb.PointsAwarded,
		AttemptsLeft:  fb.AttemptsLeft,
		Hint:          fb.Hint,
		Answer:        fb.Answer,
		Explanation:   fb.Explanation,
		SessionScore:  snap.Totals.Score,
		Totals:        totalsView(snap.Lifetime),
	}
	if snap.Attempt.Exercise != nil {
		view.ExerciseID = snap.Attempt.Exercise.ID
	}
	ws.emit("feedback", view)
}

// explain requests an explanation and waits for it in the background. The
// wait ends early when the learner moves to another exercise.
func (ws *wsSession) explain() {
	snap := ws.ctrl.State(ws.ctx)
	if snap.Attempt.Exercise == nil || !snap.Attempt.Resolved {
		ws.fail("explanations are available once the exercise is resolved", nil)
		return
	}
	if !ws.ctrl.RequestExplanation(ws.ctx) {
		ws.fail("explanations are not available", nil)
		return
	}
	id := snap.Attempt.Exercise.ID

	ws.helpers.Add(1)
	go func() {
		defer ws.helpers.Done()
		ticker := time.NewTicker(explanationPoll)
		defer ticker.Stop()
		deadline := time.NewTimer(ws.s.cfg.ExplainTimeout)
		defer deadline.Stop()

		for {
			select {
			case <-ticker.C:
				cur := ws.ctrl.State(ws.ctx).Attempt.Exercise
				if cur == nil || cur.ID != id {
					return
				}
				if text, ok := ws.ctrl.Explanation(); ok {
					ws.emit("explanation", textPayload{ExerciseID: id, Text: text})
					return
				}
			case <-deadline.C:
				ws.emit("error", errorPayload{Message: "explanation timed out"})
				return
			case <-ws.closeSignals:
				return
			}
		}
	}()
}

func (ws *wsSession) leaderboard(raw json.RawMessage) {
	var params leaderboardParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			ws.fail("invalid leaderboard payload", nil)
			return
		}
	}
	if err := ws.s.validate.Struct(params); err != nil {
		ws.fail("validation failed", validationDetails(err))
		return
	}
	q := params.query()
	ws.mu.Lock()
	ws.watch = q
	ws.mu.Unlock()
	ws.sendBoard(q)
}

// boardChanged refreshes the watched board when ev can affect it.
func (ws *wsSession) boardChanged(ev events.ScoreRecorded) {
	ws.mu.Lock()
	q := ws.watch
	ws.mu.Unlock()
	if q.Board == leaderboard.BoardTopic && q.Topic != ev.Topic {
		return
	}
	ws.sendBoard(q)
}

func (ws *wsSession) sendBoard(q leaderboard.Query) {
	view, err := ws.s.cfg.Board.View(ws.ctx, q, ws.principal.UID)
	if err != nil {
		ws.log.WithError(err).Warn("Failed to load leaderboard")
		ws.emit("error", errorPayload{Message: "failed to load leaderboard"})
		return
	}
	ws.emit("leaderboard", view)
}

// endSession ends the running session, if any, and records it.
func (ws *wsSession) endSession() *session.Summary {
	summary := ws.ctrl.End()
	if err := ws.keeper.RecordEnd(ws.ctx, summary); err != nil {
		ws.log.WithError(err).Warn("Failed to record session end")
	}
	return summary
}

func (ws *wsSession) emitExercise() {
	snap := ws.ctrl.State(ws.ctx)
	e := snap.Attempt.Exercise
	if e == nil {
		return
	}
	view := exerciseView{
		ID:           e.ID,
		SessionID:    ws.ctrl.SessionID(),
		Topic:        string(e.Topic),
		Difficulty:   e.Difficulty.String(),
		Prompt:       e.Prompt,
		Format:       string(e.Format),
		Options:      e.Options,
		Points:       e.Points,
		AttemptsLeft: snap.Attempt.AttemptsLeft(),
	}
	for _, part := range e.Parts {
		view.Parts = append(view.Parts, partLabel{Key: part.Key, Label: part.Label})
	}
	ws.emit("exercise", view)
}

func (ws *wsSession) fail(msg string, details any) {
	ws.emit("error", errorPayload{Message: msg, Details: details})
}

// emit queues a message for the writer. Messages are dropped once the
// connection is closing.
func (ws *wsSession) emit(typ string, payload any) {
	select {
	case ws.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-ws.closeSignals:
	case <-ws.writerDone:
	}
}

func newSummaryView(s *session.Summary) summaryView {
	view := summaryView{
		SessionID:          s.SessionID,
		Difficulty:         s.Difficulty.String(),
		DurationSecs:       int(s.Duration.Seconds()),
		Score:              s.Score,
		ExercisesCompleted: s.ExercisesCompleted,
		Correct:            s.Correct,
		Accuracy:           s.Accuracy,
		Topics:             []topicResultView{},
	}
	for _, tr := range s.TopicResults {
		view.Topics = append(view.Topics, topicResultView{
			Topic:     string(tr.Topic),
			Attempted: tr.Attempted,
			Correct:   tr.Correct,
			Points:    tr.Points,
		})
	}
	return view
}
