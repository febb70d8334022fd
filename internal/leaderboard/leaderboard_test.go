package leaderboard

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathdrill/internal/events"
	"github.com/abhisek/mathdrill/internal/store"
)

var testNow = time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC) // a Wednesday

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *RedisBoard) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisBoard(client)
}

// seed records one scored exercise for uid in both the users table and the
// event log, as the score keeper would.
func seed(t *testing.T, s *store.Store, uid, exID, topic string, points int, at time.Time) {
	t.Helper()
	ctx := context.Background()
	_, err := s.UserRepo().IncrementTotals(ctx, uid, "name-"+uid, points, 1)
	require.NoError(t, err)
	require.NoError(t, s.EventRepo().AppendScoreEvent(ctx, store.ScoreEventData{
		UID:        uid,
		Username:   "name-" + uid,
		ExerciseID: exID,
		Topic:      topic,
		Difficulty: "easy",
		Points:     points,
		Exercises:  1,
		Timestamp:  at,
	}))
}

func newService(s *store.Store, cache *RedisBoard) *Service {
	svc := NewService(s.UserRepo(), s.EventRepo(), cache)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestEncodeScoreOrdersTies(t *testing.T) {
	early := encodeScore(30, testNow)
	late := encodeScore(30, testNow.Add(time.Minute))
	assert.Greater(t, early, late)
	assert.Greater(t, encodeScore(31, testNow.Add(time.Hour)), early)
	assert.Equal(t, 30, decodePoints(early))
	assert.Equal(t, 0, decodePoints(encodeScore(0, testNow)))
}

func TestQueryKeysAndWindows(t *testing.T) {
	tests := []struct {
		q     Query
		key   string
		since time.Time
	}{
		{Query{Board: BoardAllTime}, "mathdrill:board:all-time", time.Time{}},
		{Query{Board: BoardDaily}, "mathdrill:board:daily:2026-03-04", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)},
		{Query{Board: BoardWeekly}, "mathdrill:board:weekly:2026-W10", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Query{Board: BoardTopic, Topic: "isosceles-triangle"}, "mathdrill:board:topic:isosceles-triangle", time.Time{}},
	}
	for _, tt := range tests {
		if got := tt.q.key(testNow); got != tt.key {
			t.Errorf("key(%v) = %q, want %q", tt.q.Board, got, tt.key)
		}
		if got := tt.q.since(testNow); !got.Equal(tt.since) {
			t.Errorf("since(%v) = %v, want %v", tt.q.Board, got, tt.since)
		}
	}

	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), weekStart(sunday))
}

func TestParseBoard(t *testing.T) {
	b, err := ParseBoard("")
	require.NoError(t, err)
	assert.Equal(t, BoardAllTime, b)

	b, err = ParseBoard(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, BoardWeekly, b)

	_, err = ParseBoard("monthly")
	assert.Error(t, err)

	_, err = Query{Board: BoardTopic}.normalize()
	assert.Error(t, err)
}

func TestServiceFromStore(t *testing.T) {
	s := openStore(t)
	seed(t, s, "a", "e1", "order-of-operations", 10, testNow.Add(-48*time.Hour))
	seed(t, s, "b", "e2", "distributive-property", 25, testNow.Add(-time.Hour))
	seed(t, s, "a", "e3", "order-of-operations", 20, testNow.Add(-30*time.Minute))
	svc := newService(s, nil)
	ctx := context.Background()

	all, err := svc.Top(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, Entry{Rank: 1, UID: "a", Username: "name-a", Score: 30, CompletedExercises: 2}, all[0])

	daily, err := svc.Top(ctx, Query{Board: BoardDaily})
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "b", daily[0].UID)
	assert.Equal(t, 20, daily[1].Score)

	topic, err := svc.Top(ctx, Query{Board: BoardTopic, Topic: "distributive-property"})
	require.NoError(t, err)
	require.Len(t, topic, 1)
	assert.Equal(t, "b", topic[0].UID)
}

func TestViewIncludesSelfOutsideTop(t *testing.T) {
	for _, withRedis := range []bool{false, true} {
		t.Run(map[bool]string{false: "store", true: "redis"}[withRedis], func(t *testing.T) {
			s := openStore(t)
			for i := 0; i < 12; i++ {
				uid := string(rune('a' + i))
				seed(t, s, uid, "e-"+uid, "order-of-operations", 100-i, testNow.Add(-time.Minute))
			}
			var cache *RedisBoard
			if withRedis {
				_, cache = newRedis(t)
			}
			svc := newService(s, cache)
			ctx := context.Background()

			view, err := svc.View(ctx, Query{}, "l")
			require.NoError(t, err)
			require.Len(t, view.Entries, DefaultLimit)
			require.NotNil(t, view.Self)
			assert.Equal(t, 12, view.Self.Rank)
			assert.Equal(t, 89, view.Self.Score)
			assert.Equal(t, "name-l", view.Self.Username)

			view, err = svc.View(ctx, Query{}, "b")
			require.NoError(t, err)
			assert.Nil(t, view.Self, "user inside the top needs no self row")

			view, err = svc.View(ctx, Query{Board: BoardDaily}, "nobody")
			require.NoError(t, err)
			assert.Nil(t, view.Self)
		})
	}
}

func TestRedisBoardKeepsStoreTieOrder(t *testing.T) {
	s := openStore(t)
	seed(t, s, "zed", "e1", "order-of-operations", 30, testNow.Add(-2*time.Hour))
	seed(t, s, "amy", "e2", "order-of-operations", 30, testNow.Add(-time.Hour))
	_, cache := newRedis(t)
	svc := newService(s, cache)

	top, err := svc.Top(context.Background(), Query{Board: BoardDaily})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "zed", top[0].UID, "earlier scorer ranks first")
	assert.Equal(t, 30, top[0].Score)
	assert.Equal(t, 1, top[0].CompletedExercises)
}

func TestServiceMaterializesOnce(t *testing.T) {
	s := openStore(t)
	seed(t, s, "a", "e1", "order-of-operations", 10, testNow)
	mr, cache := newRedis(t)
	svc := newService(s, cache)
	ctx := context.Background()

	_, err := svc.Top(ctx, Query{})
	require.NoError(t, err)
	assert.True(t, mr.Exists("mathdrill:board:all-time"))

	// Store changes without an event are not visible until the board is
	// rebuilt.
	seed(t, s, "b", "e2", "order-of-operations", 50, testNow)
	top, err := svc.Top(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, top, 1)

	require.NoError(t, cache.Clear(ctx))
	top, err = svc.Top(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].UID)
}

func TestWindowedBoardsExpire(t *testing.T) {
	s := openStore(t)
	seed(t, s, "a", "e1", "order-of-operations", 10, testNow)
	mr, cache := newRedis(t)
	svc := newService(s, cache)

	_, err := svc.Top(context.Background(), Query{Board: BoardDaily})
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, mr.TTL("mathdrill:board:daily:2026-03-04"))

	mr.FastForward(49 * time.Hour)
	assert.False(t, mr.Exists("mathdrill:board:daily:2026-03-04"))
}

func TestProjectorUpdatesMaterializedBoards(t *testing.T) {
	s := openStore(t)
	seed(t, s, "a", "e1", "order-of-operations", 10, testNow)
	_, cache := newRedis(t)
	svc := newService(s, cache)
	ctx := context.Background()

	var mu sync.Mutex
	var changed []string
	proj := NewProjector(s.UserRepo(), s.EventRepo(), cache, func(ev events.ScoreRecorded) {
		mu.Lock()
		changed = append(changed, ev.ExerciseID)
		mu.Unlock()
	})

	// Materialize all-time and daily; weekly stays cold.
	_, err := svc.Top(ctx, Query{})
	require.NoError(t, err)
	_, err = svc.Top(ctx, Query{Board: BoardDaily})
	require.NoError(t, err)

	seed(t, s, "b", "e2", "order-of-operations", 40, testNow.Add(time.Minute))
	require.NoError(t, proj.Handle(ctx, events.ScoreRecorded{
		UID:                "b",
		Username:           "name-b",
		ExerciseID:         "e2",
		Topic:              "order-of-operations",
		Points:             40,
		Exercises:          1,
		TotalScore:         40,
		CompletedExercises: 1,
		At:                 testNow.Add(time.Minute),
	}))

	for _, q := range []Query{{}, {Board: BoardDaily}} {
		top, err := svc.Top(ctx, q)
		require.NoError(t, err)
		require.Len(t, top, 2, "board %s", q.Board)
		assert.Equal(t, "b", top[0].UID)
		assert.Equal(t, 40, top[0].Score)
	}

	exists, err := cache.Exists(ctx, Query{Board: BoardWeekly}.key(testNow))
	require.NoError(t, err)
	assert.False(t, exists, "cold boards are not created by events")

	// Replaying the same event leaves the boards unchanged.
	require.NoError(t, proj.Handle(ctx, events.ScoreRecorded{
		UID: "b", Username: "name-b", ExerciseID: "e2", Topic: "order-of-operations",
		TotalScore: 40, CompletedExercises: 1, At: testNow.Add(time.Minute),
	}))
	top, err := svc.Top(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 40, top[0].Score)

	mu.Lock()
	assert.Equal(t, []string{"e2", "e2"}, changed)
	mu.Unlock()
}

func TestProjectorStaleEventKeepsCurrentTotals(t *testing.T) {
	s := openStore(t)
	_, cache := newRedis(t)
	svc := newService(s, cache)
	ctx := context.Background()
	proj := NewProjector(s.UserRepo(), s.EventRepo(), cache, nil)

	boards := []Query{{}, {Board: BoardDaily}, {Board: BoardTopic, Topic: "order-of-operations"}}
	seed(t, s, "b", "e0", "order-of-operations", 5, testNow.Add(-time.Minute))
	for _, q := range boards {
		_, err := svc.Top(ctx, q)
		require.NoError(t, err)
	}

	first := events.ScoreRecorded{
		UID: "a", Username: "name-a", ExerciseID: "e1", Topic: "order-of-operations",
		Points: 10, Exercises: 1, TotalScore: 10, CompletedExercises: 1, At: testNow,
	}
	second := events.ScoreRecorded{
		UID: "a", Username: "name-a", ExerciseID: "e2", Topic: "order-of-operations",
		Points: 15, Exercises: 1, TotalScore: 25, CompletedExercises: 2, At: testNow.Add(time.Minute),
	}
	seed(t, s, "a", "e1", "order-of-operations", 10, first.At)
	seed(t, s, "a", "e2", "order-of-operations", 15, second.At)

	// The later event is delivered first.
	require.NoError(t, proj.Handle(ctx, second))
	require.NoError(t, proj.Handle(ctx, first))

	for _, q := range boards {
		top, err := svc.Top(ctx, q)
		require.NoError(t, err)
		require.Len(t, top, 2, "board %s", q.Board)
		assert.Equal(t, "a", top[0].UID, "board %s", q.Board)
		assert.Equal(t, 25, top[0].Score, "board %s", q.Board)
		assert.Equal(t, 2, top[0].CompletedExercises, "board %s", q.Board)
	}
}

func TestProjectorSkipsUsersWithoutPoints(t *testing.T) {
	s := openStore(t)
	_, cache := newRedis(t)
	svc := newService(s, cache)
	ctx := context.Background()
	proj := NewProjector(s.UserRepo(), s.EventRepo(), cache, nil)

	seed(t, s, "a", "e1", "order-of-operations", 10, testNow)
	_, err := svc.Top(ctx, Query{})
	require.NoError(t, err)

	seed(t, s, "z", "e2", "order-of-operations", 0, testNow)
	require.NoError(t, proj.Handle(ctx, events.ScoreRecorded{UID: "z", ExerciseID: "e2", At: testNow}))

	top, err := svc.Top(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "a", top[0].UID)
}

func TestProjectorWithoutRedisForwardsChanges(t *testing.T) {
	s := openStore(t)
	var got []events.ScoreRecorded
	p := NewProjector(s.UserRepo(), s.EventRepo(), nil, func(ev events.ScoreRecorded) {
		got = append(got, ev)
	})

	ev := events.ScoreRecorded{UID: "user-ada", Topic: "order-of-operations", At: testNow}
	require.NoError(t, p.Handle(context.Background(), ev))
	require.Len(t, got, 1)
	assert.Equal(t, "user-ada", got[0].UID)
}
