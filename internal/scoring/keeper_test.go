package scoring

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathdrill/internal/events"
	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/session"
	"github.com/abhisek/mathdrill/internal/store"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ScoreRecorded
}

func (p *recordingPublisher) PublishScore(_ context.Context, ev events.ScoreRecorded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) recorded() []events.ScoreRecorded {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.ScoreRecorded(nil), p.events...)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "scoring.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func inc(id string, points, exercises int) session.Increment {
	return session.Increment{
		Points:     points,
		Exercises:  exercises,
		Topic:      problemgen.TopicOrderOfOperations,
		Difficulty: problemgen.DifficultyEasy,
		ExerciseID: id,
		SessionID:  "s1",
	}
}

func TestKeeperPersistsIncrements(t *testing.T) {
	s := openStore(t)
	pub := &recordingPublisher{}
	ctx := context.Background()

	k, err := NewKeeper(ctx, Config{
		Principal: identity.Principal{UID: "u1", Username: "ada"},
		Users:     s.UserRepo(),
		Events:    s.EventRepo(),
		Publisher: pub,
	})
	require.NoError(t, err)

	k.IncrementScore(ctx, inc("e1", 10, 1))
	k.IncrementScore(ctx, inc("e2", 0, 1))
	assert.Equal(t, session.Totals{Score: 10, CompletedExercises: 2}, k.CurrentTotals(ctx))

	k.Close()

	u, err := s.UserRepo().Totals(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, u.Score)
	assert.Equal(t, 2, u.CompletedExercises)
	assert.Equal(t, "ada", u.Username)

	board, err := s.EventRepo().TopForTopic(ctx, string(problemgen.TopicOrderOfOperations), 10)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 10, board[0].Score)

	recorded := pub.recorded()
	require.Len(t, recorded, 2)
	assert.Equal(t, 10, recorded[1].TotalScore)
	assert.Equal(t, 2, recorded[1].CompletedExercises)
	assert.Equal(t, "s1", recorded[0].SessionID)
}

func TestKeeperSeedsMirrorFromStore(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	_, err := s.UserRepo().IncrementTotals(ctx, "u1", "ada", 40, 3)
	require.NoError(t, err)

	k, err := NewKeeper(ctx, Config{
		Principal: identity.Principal{UID: "u1", Username: "ada"},
		Users:     s.UserRepo(),
	})
	require.NoError(t, err)
	defer k.Close()

	assert.Equal(t, session.Totals{Score: 40, CompletedExercises: 3}, k.CurrentTotals(ctx))
}

func TestKeeperGuestIsNeverPersisted(t *testing.T) {
	s := openStore(t)
	pub := &recordingPublisher{}
	ctx := context.Background()
	guest := identity.Guest(time.UnixMilli(1700000000000))

	k, err := NewKeeper(ctx, Config{
		Principal: guest,
		Users:     s.UserRepo(),
		Events:    s.EventRepo(),
		Publisher: pub,
	})
	require.NoError(t, err)

	k.IncrementScore(ctx, inc("e1", 15, 1))
	assert.Equal(t, session.Totals{Score: 15, CompletedExercises: 1}, k.CurrentTotals(ctx))
	k.Close()

	_, err = s.UserRepo().Totals(ctx, guest.UID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, pub.recorded())
}

func TestKeeperRejectsInvalidIncrements(t *testing.T) {
	ctx := context.Background()
	k, err := NewKeeper(ctx, Config{Principal: identity.Principal{UID: "u1"}})
	require.NoError(t, err)
	defer k.Close()

	k.IncrementScore(ctx, inc("e1", -5, 1))
	k.IncrementScore(ctx, inc("e2", 5, 2))
	assert.Equal(t, session.Totals{}, k.CurrentTotals(ctx))
}

func TestKeeperSurvivesCancelledSessionContext(t *testing.T) {
	s := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	k, err := NewKeeper(ctx, Config{
		Principal: identity.Principal{UID: "u1", Username: "ada"},
		Users:     s.UserRepo(),
	})
	require.NoError(t, err)

	k.IncrementScore(ctx, inc("e1", 20, 1))
	cancel()
	k.Close()

	u, err := s.UserRepo().Totals(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 20, u.Score)
}

func TestKeeperCloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	k, err := NewKeeper(ctx, Config{Principal: identity.Principal{UID: "u1"}})
	require.NoError(t, err)

	k.Close()
	k.Close()
	k.IncrementScore(ctx, inc("e1", 10, 1))
	assert.Equal(t, 10, k.CurrentTotals(ctx).Score)
}

func TestKeeperRejectsInvalidPrincipal(t *testing.T) {
	_, err := NewKeeper(context.Background(), Config{})
	assert.Equal(t, identity.KindInvalidClaims, identity.Kind(err))
}

func TestKeeperWithController(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	k, err := NewKeeper(ctx, Config{
		Principal: identity.Principal{UID: "u1", Username: "ada"},
		Users:     s.UserRepo(),
		Events:    s.EventRepo(),
	})
	require.NoError(t, err)

	c := session.NewController(session.Config{
		Source: problemgen.NewSource(7),
		Keeper: k,
	})
	require.True(t, c.Start([]problemgen.Topic{problemgen.TopicShortMultiplication}, problemgen.DifficultyEasy))

	snap := c.State(ctx)
	fb := c.Submit(ctx, snap.Attempt.Exercise.Answer)
	require.Equal(t, session.OutcomeCorrect, fb.Outcome)
	k.Close()

	u, err := s.UserRepo().Totals(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, fb.PointsAwarded, u.Score)
	assert.Equal(t, 1, u.CompletedExercises)
}

func TestKeeperRecordsSessionLifecycle(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	k, err := NewKeeper(ctx, Config{
		Principal: identity.Principal{UID: "u1", Username: "ada"},
		Users:     s.UserRepo(),
		Events:    s.EventRepo(),
	})
	require.NoError(t, err)
	defer k.Close()

	c := session.NewController(session.Config{Source: problemgen.NewSource(3), Keeper: k})
	topics := []problemgen.Topic{problemgen.TopicOrderOfOperations}
	require.True(t, c.Start(topics, problemgen.DifficultyMedium))
	require.NoError(t, k.RecordStart(ctx, c.SessionID(), topics, problemgen.DifficultyMedium))

	snap := c.State(ctx)
	c.Submit(ctx, snap.Attempt.Exercise.Answer)
	summary := c.End()
	require.NotNil(t, summary)
	require.NoError(t, k.RecordEnd(ctx, summary))
	require.NoError(t, k.RecordEnd(ctx, nil))

	sessions, err := s.EventRepo().RecentSessions(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, summary.SessionID, sessions[0].SessionID)
	assert.Equal(t, summary.Score, sessions[0].Score)
	assert.Equal(t, 1, sessions[0].ExercisesCompleted)
	assert.Equal(t, "medium", sessions[0].Difficulty)

	var starts int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM session_events WHERE action = 'start'").Scan(&starts))
	assert.Equal(t, 1, starts)
}

func TestKeeperGuestSessionsNotRecorded(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	k, err := NewKeeper(ctx, Config{
		Principal: identity.Guest(time.Now()),
		Users:     s.UserRepo(),
		Events:    s.EventRepo(),
	})
	require.NoError(t, err)
	defer k.Close()

	require.NoError(t, k.RecordStart(ctx, "s1", nil, problemgen.DifficultyEasy))
	require.NoError(t, k.RecordEnd(ctx, &session.Summary{SessionID: "s1"}))

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM session_events").Scan(&n))
	assert.Equal(t, 0, n)
}
