package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/mathdrill/internal/store"
)

// Service answers board queries. Concurrent reads of the same board are
// coalesced. With a RedisBoard, boards are materialized from the store on
// first read and kept current by the Projector.
type Service struct {
	users  store.UserRepo
	events store.EventRepo
	cache  *RedisBoard
	sf     singleflight.Group
	now    func() time.Time
}

// NewService creates a service. cache may be nil.
func NewService(users store.UserRepo, events store.EventRepo, cache *RedisBoard) *Service {
	return &Service{
		users:  users,
		events: events,
		cache:  cache,
		now:    time.Now,
	}
}

// Top returns the first q.Limit entries of the board.
func (s *Service) Top(ctx context.Context, q Query) ([]Entry, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}
	key := q.key(s.now())

	v, err, _ := s.sf.Do(key+"#"+strconv.Itoa(q.Limit), func() (any, error) {
		if s.cache == nil {
			rows, err := s.fromStore(ctx, q)
			if err != nil {
				return nil, err
			}
			return rank(rows, q.Limit), nil
		}
		if err := s.materialize(ctx, q, key); err != nil {
			return nil, err
		}
		return s.cache.Top(ctx, key, q.Limit)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Entry), nil
}

// View returns the board plus uid's own entry when uid is ranked outside
// it. An empty uid or an unranked user yields no Self.
func (s *Service) View(ctx context.Context, q Query, uid string) (*View, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}
	entries, err := s.Top(ctx, q)
	if err != nil {
		return nil, err
	}
	view := &View{Board: q.Board, Topic: q.Topic, Entries: entries}
	if uid == "" {
		return view, nil
	}
	for _, e := range entries {
		if e.UID == uid {
			return view, nil
		}
	}

	self, ok, err := s.rankOf(ctx, q, uid)
	if err != nil {
		return nil, err
	}
	if ok {
		view.Self = &self
	}
	return view, nil
}

func (s *Service) rankOf(ctx context.Context, q Query, uid string) (Entry, bool, error) {
	if s.cache != nil {
		return s.cache.Rank(ctx, q.key(s.now()), uid)
	}

	if q.Board == BoardAllTime {
		u, err := s.users.Totals(ctx, uid)
		if errors.Is(err, store.ErrNotFound) {
			return Entry{}, false, nil
		}
		if err != nil {
			return Entry{}, false, err
		}
		r, err := s.users.Rank(ctx, uid)
		if errors.Is(err, store.ErrNotFound) {
			return Entry{}, false, nil
		}
		if err != nil {
			return Entry{}, false, err
		}
		return Entry{
			Rank:               r,
			UID:                uid,
			Username:           u.Username,
			Score:              u.Score,
			CompletedExercises: u.CompletedExercises,
		}, true, nil
	}

	rows, err := s.fromStore(ctx, q)
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range rank(rows, 0) {
		if e.UID == uid {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// materialize loads the board from the store unless it is already in Redis.
func (s *Service) materialize(ctx context.Context, q Query, key string) error {
	ok, err := s.cache.Exists(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	rows, err := s.fromStore(ctx, q)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"board": key, "rows": len(rows)}).Debug("Materializing leaderboard")
	return s.cache.Replace(ctx, key, rows, q.ttl())
}

// fromStore returns every standing of the board in rank order. Rows from
// aggregated boards carry positional ReachedAt values so the Redis
// encoding preserves the store's tie order.
func (s *Service) fromStore(ctx context.Context, q Query) ([]Standing, error) {
	if q.Board == BoardAllTime {
		users, err := s.users.TopUsers(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("load all-time board: %w", err)
		}
		rows := make([]Standing, len(users))
		for i, u := range users {
			rows[i] = Standing{
				UID:                u.UID,
				Username:           u.Username,
				Score:              u.Score,
				CompletedExercises: u.CompletedExercises,
				ReachedAt:          u.UpdatedAt,
			}
		}
		return rows, nil
	}

	var (
		standings []store.Standing
		err       error
	)
	if q.Board == BoardTopic {
		standings, err = s.events.TopForTopic(ctx, q.Topic, 0)
	} else {
		standings, err = s.events.TopSince(ctx, q.since(s.now()), 0)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s board: %w", q.Board, err)
	}
	rows := make([]Standing, len(standings))
	for i, st := range standings {
		rows[i] = Standing{
			UID:                st.UID,
			Username:           st.Username,
			Score:              st.Score,
			CompletedExercises: st.CompletedExercises,
			ReachedAt:          time.Unix(int64(i), 0),
		}
	}
	return rows, nil
}

// rank numbers rows from 1 and truncates to limit (0 keeps all).
func rank(rows []Standing, limit int) []Entry {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = Entry{
			Rank:               i + 1,
			UID:                r.UID,
			Username:           r.Username,
			Score:              r.Score,
			CompletedExercises: r.CompletedExercises,
		}
	}
	return entries
}
