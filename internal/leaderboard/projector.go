package leaderboard

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/mathdrill/internal/events"
	"github.com/abhisek/mathdrill/internal/store"
)

// Projector keeps materialized Redis boards current as score events
// arrive. Boards that have not been materialized yet are skipped; the next
// read loads them from the store, which already holds the event.
//
// Events may arrive in any order, so every standing is re-read from the
// store instead of taken from the event payload. Handling a stale event
// then writes the current totals, never older ones.
type Projector struct {
	users    store.UserRepo
	events   store.EventRepo
	board    *RedisBoard
	now      func() time.Time
	onChange func(ev events.ScoreRecorded)
}

// NewProjector creates a projector. onChange, if set, runs after each
// handled event. A nil board only forwards events to onChange.
func NewProjector(users store.UserRepo, eventRepo store.EventRepo, board *RedisBoard, onChange func(events.ScoreRecorded)) *Projector {
	return &Projector{
		users:    users,
		events:   eventRepo,
		board:    board,
		now:      time.Now,
		onChange: onChange,
	}
}

// Handle applies one score event. It matches events.ScoreHandler.
func (p *Projector) Handle(ctx context.Context, ev events.ScoreRecorded) error {
	at := ev.At
	if at.IsZero() {
		at = p.now()
	}

	var errs []error
	errs = append(errs, p.setIfMaterialized(ctx, Query{Board: BoardAllTime}, at, func() (*Standing, error) {
		u, err := p.users.Totals(ctx, ev.UID)
		if err != nil {
			return nil, err
		}
		if u.Score <= 0 {
			return nil, store.ErrNotFound
		}
		return &Standing{
			UID:                u.UID,
			Username:           u.Username,
			Score:              u.Score,
			CompletedExercises: u.CompletedExercises,
			ReachedAt:          u.UpdatedAt,
		}, nil
	}))

	for _, q := range []Query{{Board: BoardDaily}, {Board: BoardWeekly}} {
		errs = append(errs, p.setIfMaterialized(ctx, q, at, func() (*Standing, error) {
			return fromAggregate(p.events.StandingSince(ctx, ev.UID, q.since(at)))
		}))
	}

	if ev.Topic != "" {
		q := Query{Board: BoardTopic, Topic: ev.Topic}
		errs = append(errs, p.setIfMaterialized(ctx, q, at, func() (*Standing, error) {
			return fromAggregate(p.events.StandingForTopic(ctx, ev.UID, ev.Topic))
		}))
	}

	if p.onChange != nil {
		p.onChange(ev)
	}
	return errors.Join(errs...)
}

// fromAggregate converts an aggregated store row. ReachedAt is left zero
// for setIfMaterialized to fill.
func fromAggregate(st *store.Standing, err error) (*Standing, error) {
	if err != nil {
		return nil, err
	}
	return &Standing{
		UID:                st.UID,
		Username:           st.Username,
		Score:              st.Score,
		CompletedExercises: st.CompletedExercises,
	}, nil
}

func (p *Projector) setIfMaterialized(ctx context.Context, q Query, at time.Time, load func() (*Standing, error)) error {
	if p.board == nil {
		return nil
	}
	key := q.key(at)
	ok, err := p.board.Exists(ctx, key)
	if err != nil || !ok {
		return err
	}
	st, err := load()
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if st.ReachedAt.IsZero() {
		st.ReachedAt = at
	}
	return p.board.Set(ctx, key, *st, q.ttl())
}
