package session

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens/summary"
	sess "github.com/abhisek/mathdrill/internal/session"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
)

const explainPollInterval = 100 * time.Millisecond

// SessionScreen drives one practice session through a session.Controller.
type SessionScreen struct {
	deps       Deps
	ctrl       *sess.Controller
	topics     []problemgen.Topic
	difficulty problemgen.Difficulty
	now        func() time.Time

	exercise *problemgen.Exercise
	question int
	mc       components.MultiChoice
	input    components.TextInput
	parts    []components.TextInput
	focus    int

	feedback        *sess.Feedback
	explainable     bool
	explaining      bool
	explainDeadline time.Time
	explanation     string
	explainMissed   bool

	quitConfirm bool
	ended       bool
	errMsg      string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.EscCapturer = (*SessionScreen)(nil)
var _ screen.Leaver = (*SessionScreen)(nil)

// New creates a practice screen for the chosen topics and difficulty. The
// session starts when the screen is initialized.
func New(deps Deps, topics []problemgen.Topic, d problemgen.Difficulty) *SessionScreen {
	var explainer sess.Explainer
	if deps.NewExplainer != nil {
		explainer = deps.NewExplainer()
	}
	ctrl := sess.NewController(sess.Config{
		Generator: deps.generator(),
		Keeper:    deps.Keeper,
		Explainer: explainer,
	})
	return &SessionScreen{
		deps:        deps,
		ctrl:        ctrl,
		topics:      topics,
		difficulty:  d,
		now:         time.Now,
		explainable: explainer != nil,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	if !s.ctrl.Start(s.topics, s.difficulty) {
		s.errMsg = "pick at least one topic and a difficulty"
		s.ended = true
		return nil
	}
	focus := s.loadExercise()

	if s.deps.Keeper != nil {
		err := s.deps.Keeper.RecordStart(context.Background(), s.ctrl.SessionID(), s.topics, s.difficulty)
		if err != nil {
			logrus.WithError(err).Warn("failed to record session start")
		}
	}
	return focus
}

func (s *SessionScreen) Title() string {
	return "Practice"
}

func (s *SessionScreen) CapturesEsc() bool { return true }

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.quitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.resolved():
		hints := []layout.KeyHint{{Key: "Enter", Description: "Next"}}
		if s.explainable && !s.explaining && s.explanation == "" {
			hints = append(hints, layout.KeyHint{Key: "E", Description: "Explain"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "End"})
	case s.exercise != nil && s.exercise.Format == problemgen.FormatMultipleChoice:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "End"},
		}
	case len(s.parts) > 0:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next field"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "End"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "End"},
	}
}

// Leave ends a session that is still running when the screen is torn down.
func (s *SessionScreen) Leave() {
	if !s.ended {
		s.finish()
	}
}

// finish ends the controller session and records its summary.
func (s *SessionScreen) finish() *sess.Summary {
	s.ended = true
	result := s.ctrl.End()
	if s.deps.Keeper != nil {
		if err := s.deps.Keeper.RecordEnd(context.Background(), result); err != nil {
			logrus.WithError(err).Warn("failed to record session end")
		}
	}
	return result
}

func (s *SessionScreen) resolved() bool {
	return s.feedback != nil && (s.feedback.Outcome == sess.OutcomeCorrect || s.feedback.Outcome == sess.OutcomeExhausted)
}

// loadExercise resets the input widgets for the exercise on screen.
func (s *SessionScreen) loadExercise() tea.Cmd {
	snap := s.ctrl.State(context.Background())
	e := snap.Attempt.Exercise
	if e == nil {
		return nil
	}
	s.exercise = e
	s.question++
	s.feedback = nil
	s.explaining = false
	s.explanation = ""
	s.explainMissed = false
	s.parts = nil
	s.focus = 0

	switch e.Format {
	case problemgen.FormatMultipleChoice:
		s.mc = components.NewMultiChoice(e.Options)
		return nil
	case problemgen.FormatMultiPart:
		for i, p := range e.Parts {
			in := components.NewTextInput("0", true, 6)
			in.Label = p.Label
			if i > 0 {
				in.Blur()
			}
			s.parts = append(s.parts, in)
		}
		return s.parts[0].Focus()
	default:
		s.input = components.NewTextInput("Type your answer...", false, 40)
		return s.input.Init()
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case explainPollMsg:
		return s.handleExplainPoll(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	return s.forwardToInput(msg)
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			return s, s.end()
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	if key == "esc" {
		s.quitConfirm = true
		return s, nil
	}

	if s.resolved() {
		switch key {
		case "enter", "space", " ", "n":
			if !s.ctrl.Next() {
				return s, nil
			}
			return s, s.loadExercise()
		case "e", "E":
			return s, s.requestExplanation()
		}
		return s, nil
	}

	switch {
	case s.exercise == nil:
		return s, nil
	case s.exercise.Format == problemgen.FormatMultipleChoice:
		var submitted bool
		s.mc, submitted = s.mc.Update(msg)
		if submitted {
			return s, s.apply(s.ctrl.Submit(context.Background(), s.mc.Value()))
		}
		return s, nil
	case len(s.parts) > 0:
		switch key {
		case "tab", "down":
			return s, s.moveFocus(1)
		case "shift+tab", "up":
			return s, s.moveFocus(-1)
		case "enter":
			return s, s.apply(s.ctrl.SubmitParts(context.Background(), s.partValues()))
		}
	default:
		if key == "enter" {
			return s, s.apply(s.ctrl.Submit(context.Background(), s.input.Value()))
		}
	}

	return s.forwardToInput(msg)
}

func (s *SessionScreen) forwardToInput(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.exercise == nil || s.resolved() || s.quitConfirm {
		return s, nil
	}
	var cmd tea.Cmd
	switch {
	case s.exercise.Format == problemgen.FormatMultipleChoice:
	case len(s.parts) > 0:
		s.parts[s.focus], cmd = s.parts[s.focus].Update(msg)
	default:
		s.input, cmd = s.input.Update(msg)
	}
	return s, cmd
}

func (s *SessionScreen) moveFocus(delta int) tea.Cmd {
	n := len(s.parts)
	s.parts[s.focus].Blur()
	s.focus = (s.focus + delta + n) % n
	return s.parts[s.focus].Focus()
}

func (s *SessionScreen) partValues() map[string]string {
	values := make(map[string]string, len(s.parts))
	for i, p := range s.exercise.Parts {
		values[p.Key] = s.parts[i].Value()
	}
	return values
}

// apply updates the widgets for a submission result.
func (s *SessionScreen) apply(fb sess.Feedback) tea.Cmd {
	switch fb.Outcome {
	case sess.OutcomeIgnored:
		return nil

	case sess.OutcomeRetry:
		s.feedback = &fb
		switch {
		case s.exercise.Format == problemgen.FormatMultipleChoice:
			s.mc.Eliminate()
		case len(s.parts) > 0:
			for i := range s.parts {
				s.parts[i].Clear()
			}
			return s.moveFocus(-s.focus)
		default:
			s.input.Clear()
		}
		return nil
	}

	s.feedback = &fb
	correct := fb.Outcome == sess.OutcomeCorrect
	switch {
	case s.exercise.Format == problemgen.FormatMultipleChoice:
		s.mc.Reveal(fb.Answer)
	case len(s.parts) > 0:
		for i := range s.parts {
			s.parts[i].Mark(correct)
			s.parts[i].Blur()
		}
	default:
		s.input.Mark(correct)
		s.input.Blur()
	}
	return nil
}

func (s *SessionScreen) requestExplanation() tea.Cmd {
	if !s.explainable || s.explaining || s.explanation != "" {
		return nil
	}
	if !s.ctrl.RequestExplanation(context.Background()) {
		return nil
	}
	s.explaining = true
	s.explainMissed = false
	s.explainDeadline = s.now().Add(s.deps.explainTimeout())
	return pollExplanation(s.exercise.ID)
}

func (s *SessionScreen) handleExplainPoll(msg explainPollMsg) (screen.Screen, tea.Cmd) {
	if !s.explaining || s.exercise == nil || msg.ExerciseID != s.exercise.ID {
		return s, nil
	}
	if text, ok := s.ctrl.Explanation(); ok {
		s.explaining = false
		s.explanation = text
		return s, nil
	}
	if s.now().After(s.explainDeadline) {
		s.explaining = false
		s.explainMissed = true
		return s, nil
	}
	return s, pollExplanation(msg.ExerciseID)
}

func pollExplanation(exerciseID string) tea.Cmd {
	return tea.Tick(explainPollInterval, func(time.Time) tea.Msg {
		return explainPollMsg{ExerciseID: exerciseID}
	})
}

// end finishes the session and shows its summary.
func (s *SessionScreen) end() tea.Cmd {
	next := summary.New(s.finish())
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}
