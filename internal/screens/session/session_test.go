package session

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/router"
	sess "github.com/abhisek/mathdrill/internal/session"
)

// fakeKeeper records everything a practice screen reports.
type fakeKeeper struct {
	mu         sync.Mutex
	increments []sess.Increment
	starts     []string
	ends       []*sess.Summary
}

func (k *fakeKeeper) IncrementScore(_ context.Context, inc sess.Increment) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.increments = append(k.increments, inc)
}

func (k *fakeKeeper) CurrentTotals(context.Context) sess.Totals {
	k.mu.Lock()
	defer k.mu.Unlock()
	var t sess.Totals
	for _, inc := range k.increments {
		t.Score += inc.Points
		t.CompletedExercises += inc.Exercises
	}
	return t
}

func (k *fakeKeeper) RecordStart(_ context.Context, id string, _ []problemgen.Topic, _ problemgen.Difficulty) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.starts = append(k.starts, id)
	return nil
}

func (k *fakeKeeper) RecordEnd(_ context.Context, s *sess.Summary) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.ends = append(k.ends, s)
	return nil
}

// fakeExplainer answers every request with a fixed text.
type fakeExplainer struct {
	mu       sync.Mutex
	text     string
	pending  string
	requests int
}

func (f *fakeExplainer) Request(_ context.Context, e *problemgen.Exercise, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	f.pending = e.ID
}

func (f *fakeExplainer) Consume(id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.text == "" || f.pending != id {
		return "", false
	}
	f.pending = ""
	return f.text, true
}

func (f *fakeExplainer) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = ""
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(s *SessionScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func newScreen(t *testing.T, topic problemgen.Topic, d problemgen.Difficulty, explainer sess.Explainer) (*SessionScreen, *fakeKeeper) {
	t.Helper()
	keeper := &fakeKeeper{}
	deps := Deps{Keeper: keeper, ExplainTimeout: time.Second}
	if explainer != nil {
		deps.NewExplainer = func() sess.Explainer { return explainer }
	}
	s := New(deps, []problemgen.Topic{topic}, d)
	s.Init()
	require.NotNil(t, s.exercise)
	return s, keeper
}

func optionIndex(t *testing.T, e *problemgen.Exercise, value string) int {
	t.Helper()
	for i, o := range e.Options {
		if o == value {
			return i
		}
	}
	t.Fatalf("option %q not found in %v", value, e.Options)
	return -1
}

func wrongOption(t *testing.T, e *problemgen.Exercise) int {
	t.Helper()
	for i, o := range e.Options {
		if o != e.Answer {
			return i
		}
	}
	t.Fatalf("no wrong option in %v", e.Options)
	return -1
}

func TestInitStartsSessionAndRecordsStart(t *testing.T) {
	s, keeper := newScreen(t, problemgen.TopicDistributive, problemgen.DifficultyEasy, nil)

	assert.Equal(t, problemgen.TopicDistributive, s.exercise.Topic)
	assert.Equal(t, problemgen.FormatFreeText, s.exercise.Format)
	require.Len(t, keeper.starts, 1)
	assert.NotEmpty(t, keeper.starts[0])
	assert.Contains(t, s.View(100, 30), "Distributive Property")
}

func TestInitWithoutTopicsShowsError(t *testing.T) {
	s := New(Deps{}, nil, problemgen.DifficultyEasy)
	s.Init()

	assert.Contains(t, s.View(100, 30), "Error")
	_, cmd := s.Update(keyPress('x'))
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

func TestFreeTextCorrectAnswer(t *testing.T) {
	s, keeper := newScreen(t, problemgen.TopicDistributive, problemgen.DifficultyEasy, nil)

	typeText(s, s.exercise.Answer)
	s.Update(specialKey(tea.KeyEnter))

	require.NotNil(t, s.feedback)
	assert.Equal(t, sess.OutcomeCorrect, s.feedback.Outcome)
	require.Len(t, keeper.increments, 1)
	assert.Equal(t, s.exercise.Points, keeper.increments[0].Points)
	assert.Equal(t, 1, keeper.increments[0].Exercises)
	assert.Contains(t, s.View(100, 30), "Correct!")
}

func TestFreeTextRetryShowsHintAndClearsInput(t *testing.T) {
	s, keeper := newScreen(t, problemgen.TopicDistributive, problemgen.DifficultyEasy, nil)

	typeText(s, "nope")
	s.Update(specialKey(tea.KeyEnter))

	require.NotNil(t, s.feedback)
	assert.Equal(t, sess.OutcomeRetry, s.feedback.Outcome)
	assert.Equal(t, 2, s.feedback.AttemptsLeft)
	assert.Empty(t, s.input.Value())
	assert.Empty(t, keeper.increments)
	assert.Contains(t, s.View(100, 30), "Hint:")
}

func TestBlankSubmissionIsIgnored(t *testing.T) {
	s, keeper := newScreen(t, problemgen.TopicDistributive, problemgen.DifficultyEasy, nil)

	s.Update(specialKey(tea.KeyEnter))

	assert.Nil(t, s.feedback)
	assert.Empty(t, keeper.increments)
}

func TestMultipleChoiceExhaustsAfterSingleAttempt(t *testing.T) {
	s, keeper := newScreen(t, problemgen.TopicIsosceles, problemgen.DifficultyEasy, nil)
	require.Equal(t, problemgen.FormatMultipleChoice, s.exercise.Format)

	wrong := wrongOption(t, s.exercise)
	s.Update(keyPress(rune('1' + wrong)))

	require.NotNil(t, s.feedback)
	assert.Equal(t, sess.OutcomeExhausted, s.feedback.Outcome)
	require.Len(t, keeper.increments, 1)
	assert.Equal(t, 0, keeper.increments[0].Points)
	assert.Contains(t, s.View(100, 30), "Answer: "+s.exercise.Answer)
}

func TestMultipleChoiceArrowsAndEnter(t *testing.T) {
	s, _ := newScreen(t, problemgen.TopicOrderOfOperations, problemgen.DifficultyEasy, nil)

	target := optionIndex(t, s.exercise, s.exercise.Answer)
	for i := 0; i < target; i++ {
		s.Update(specialKey(tea.KeyDown))
	}
	s.Update(specialKey(tea.KeyEnter))

	require.NotNil(t, s.feedback)
	assert.Equal(t, sess.OutcomeCorrect, s.feedback.Outcome)
}

func TestMultiPartCorrectAnswer(t *testing.T) {
	s, keeper := newScreen(t, problemgen.TopicDistributive, problemgen.DifficultyHard, nil)
	require.Equal(t, problemgen.FormatMultiPart, s.exercise.Format)
	require.Len(t, s.parts, len(s.exercise.Parts))

	for i, p := range s.exercise.Parts {
		typeText(s, p.Value)
		if i < len(s.exercise.Parts)-1 {
			s.Update(specialKey(tea.KeyTab))
		}
	}
	s.Update(specialKey(tea.KeyEnter))

	require.NotNil(t, s.feedback)
	assert.Equal(t, sess.OutcomeCorrect, s.feedback.Outcome)
	require.Len(t, keeper.increments, 1)
}

func TestMultiPartFieldsAcceptOnlyIntegers(t *testing.T) {
	s, _ := newScreen(t, problemgen.TopicDistributive, problemgen.DifficultyHard, nil)

	typeText(s, "-1x2")
	assert.Equal(t, "-12", s.parts[0].Value())
}

func TestNextDrawsNewExercise(t *testing.T) {
	s, _ := newScreen(t, problemgen.TopicDistributive, problemgen.DifficultyEasy, nil)
	first := s.exercise.ID

	// Enter on an open exercise submits; nothing is typed yet so it is ignored.
	s.Update(specialKey(tea.KeyEnter))
	assert.Equal(t, first, s.exercise.ID)

	typeText(s, s.exercise.Answer)
	s.Update(specialKey(tea.KeyEnter))
	require.True(t, s.resolved())

	s.Update(specialKey(tea.KeyEnter))

	assert.NotEqual(t, first, s.exercise.ID)
	assert.Nil(t, s.feedback)
	assert.Equal(t, 2, s.question)
	assert.Empty(t, s.input.Value())
}

func TestEscAsksBeforeEnding(t *testing.T) {
	s, keeper := newScreen(t, problemgen.TopicDistributive, problemgen.DifficultyEasy, nil)
	assert.True(t, s.CapturesEsc())

	s.Update(specialKey(tea.KeyEscape))
	assert.True(t, s.quitConfirm)
	assert.Contains(t, s.View(100, 30), "End session?")

	s.Update(keyPress('n'))
	assert.False(t, s.quitConfirm)

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('y'))
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Session Summary", msg.Screen.Title())
	require.Len(t, keeper.ends, 1)
	assert.NotNil(t, keeper.ends[0])
}

func TestLeaveRecordsRunningSessionOnce(t *testing.T) {
	s, keeper := newScreen(t, problemgen.TopicDistributive, problemgen.DifficultyEasy, nil)

	typeText(s, s.exercise.Answer)
	s.Update(specialKey(tea.KeyEnter))

	s.Leave()
	s.Leave()

	require.Len(t, keeper.ends, 1)
	assert.Equal(t, 1, keeper.ends[0].ExercisesCompleted)
}

func TestExplanationIsPolledUntilReady(t *testing.T) {
	explainer := &fakeExplainer{text: "Step by step."}
	s, _ := newScreen(t, problemgen.TopicIsosceles, problemgen.DifficultyEasy, explainer)

	// Not available before the exercise is resolved.
	_, cmd := s.Update(keyPress('e'))
	assert.Nil(t, cmd)

	s.Update(keyPress(rune('1' + optionIndex(t, s.exercise, s.exercise.Answer))))
	require.True(t, s.resolved())

	_, cmd = s.Update(keyPress('e'))
	require.NotNil(t, cmd)
	assert.True(t, s.explaining)
	assert.Equal(t, 1, explainer.requests)

	msg := cmd()
	poll, ok := msg.(explainPollMsg)
	require.True(t, ok)
	assert.Equal(t, s.exercise.ID, poll.ExerciseID)

	s.Update(poll)
	assert.False(t, s.explaining)
	assert.Equal(t, "Step by step.", s.explanation)
	assert.Contains(t, s.View(100, 30), "Step by step.")

	// A second request is not sent once the explanation is shown.
	_, cmd = s.Update(keyPress('e'))
	assert.Nil(t, cmd)
}

func TestExplanationGivesUpAfterTimeout(t *testing.T) {
	explainer := &fakeExplainer{}
	s, _ := newScreen(t, problemgen.TopicIsosceles, problemgen.DifficultyEasy, explainer)
	s.Update(keyPress(rune('1' + optionIndex(t, s.exercise, s.exercise.Answer))))
	s.Update(keyPress('e'))

	now := time.Now()
	s.now = func() time.Time { return now.Add(time.Minute) }
	s.Update(explainPollMsg{ExerciseID: s.exercise.ID})

	assert.False(t, s.explaining)
	assert.True(t, s.explainMissed)
}

func TestStalePollIsIgnored(t *testing.T) {
	explainer := &fakeExplainer{text: "late"}
	s, _ := newScreen(t, problemgen.TopicIsosceles, problemgen.DifficultyEasy, explainer)
	s.Update(keyPress(rune('1' + optionIndex(t, s.exercise, s.exercise.Answer))))
	s.Update(keyPress('e'))

	_, cmd := s.Update(explainPollMsg{ExerciseID: "other"})
	assert.Nil(t, cmd)
	assert.Empty(t, s.explanation)
}
