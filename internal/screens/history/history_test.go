package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestHistoryListsEndedSessions(t *testing.T) {
	st := openStore(t)
	events := st.EventRepo()
	ctx := context.Background()
	require.NoError(t, events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: "s-1", UID: "user-ada", Action: "start",
		Topics: []string{"isosceles-triangle"}, Difficulty: "easy",
	}))
	require.NoError(t, events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: "s-1", UID: "user-ada", Action: "end",
		Topics: []string{"isosceles-triangle"}, Difficulty: "easy",
		ExercisesCompleted: 4, CorrectAnswers: 3, Score: 60, DurationSecs: 125,
	}))

	s := New(events, identity.Principal{UID: "user-ada", Username: "Ada"})
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())

	require.Len(t, s.sessions, 1)
	view := s.View(100, 30)
	assert.Contains(t, view, "2:05")
	assert.Contains(t, view, "4 exercises")
	assert.Contains(t, view, "75%")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, s.View(100, 30), "Isosceles Triangle")
}

func TestHistoryGuest(t *testing.T) {
	s := New(nil, identity.Guest(time.Now()))
	assert.Nil(t, s.Init())
	assert.Contains(t, s.View(100, 30), "Guest sessions are not saved")
}

func TestHistoryEmpty(t *testing.T) {
	st := openStore(t)
	s := New(st.EventRepo(), identity.Principal{UID: "user-bob", Username: "Bob"})
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "No sessions yet")
}

func TestHistoryEscPops(t *testing.T) {
	s := New(nil, identity.Guest(time.Now()))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}
