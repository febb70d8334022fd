// Package scoring persists score increments for one principal without
// blocking the practice session that emits them.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/events"
	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/session"
	"github.com/abhisek/mathdrill/internal/store"
)

// DefaultQueueSize bounds the number of increments waiting to be persisted.
const DefaultQueueSize = 32

const persistTimeout = 5 * time.Second

// ScorePublisher announces persisted increments.
type ScorePublisher interface {
	PublishScore(ctx context.Context, ev events.ScoreRecorded) error
}

// Config wires a Keeper. Users and Events may be nil, in which case only
// the local mirror is kept.
type Config struct {
	Principal identity.Principal
	Users     store.UserRepo
	Events    store.EventRepo
	Publisher ScorePublisher
	QueueSize int
}

// Keeper implements session.ScoreKeeper. It mirrors totals locally and
// persists increments on a single background worker.
type Keeper struct {
	principal identity.Principal
	users     store.UserRepo
	events    store.EventRepo
	publisher ScorePublisher

	mu      sync.Mutex
	totals  session.Totals
	closed  bool
	pending chan scoreJob
	done    chan struct{}
}

var _ session.ScoreKeeper = (*Keeper)(nil)

type scoreJob struct {
	ctx context.Context
	inc session.Increment
}

// NewKeeper creates a keeper for cfg.Principal. Registered principals are
// created in the store on first sight and their stored totals seed the
// local mirror. Guests start from zero and are never persisted.
func NewKeeper(ctx context.Context, cfg Config) (*Keeper, error) {
	if err := cfg.Principal.Validate(); err != nil {
		return nil, fmt.Errorf("score keeper principal: %w", err)
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}

	k := &Keeper{
		principal: cfg.Principal,
		users:     cfg.Users,
		events:    cfg.Events,
		publisher: cfg.Publisher,
		pending:   make(chan scoreJob, size),
		done:      make(chan struct{}),
	}

	if k.persistent() {
		u, err := k.users.EnsureUser(ctx, k.principal.UID, k.principal.Username)
		if err != nil {
			return nil, fmt.Errorf("load user totals: %w", err)
		}
		k.totals = session.Totals{Score: u.Score, CompletedExercises: u.CompletedExercises}
	}

	go k.processLoop()
	return k, nil
}

// Principal returns the principal this keeper scores for.
func (k *Keeper) Principal() identity.Principal {
	return k.principal
}

func (k *Keeper) persistent() bool {
	return k.users != nil && !k.principal.Guest
}

// IncrementScore applies inc to the local mirror and queues it for
// persistence. It never blocks: when the queue is full the increment is
// dropped from persistence with a warning and the mirror keeps it.
func (k *Keeper) IncrementScore(ctx context.Context, inc session.Increment) {
	log := logrus.WithFields(logrus.Fields{
		"uid":         k.principal.UID,
		"exercise_id": inc.ExerciseID,
		"points":      inc.Points,
	})
	if inc.Points < 0 || inc.Exercises < 0 || inc.Exercises > 1 {
		log.WithField("exercises", inc.Exercises).Warn("Rejecting invalid score increment")
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.totals.Score += inc.Points
	k.totals.CompletedExercises += inc.Exercises

	if !k.persistent() || k.closed {
		return
	}
	select {
	case k.pending <- scoreJob{ctx: ctx, inc: inc}:
	default:
		log.Warn("Score queue full, increment not persisted")
	}
}

// CurrentTotals returns the optimistic local totals.
func (k *Keeper) CurrentTotals(context.Context) session.Totals {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.totals
}

// Close stops accepting increments and waits for queued ones to be
// persisted.
func (k *Keeper) Close() {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		<-k.done
		return
	}
	k.closed = true
	close(k.pending)
	k.mu.Unlock()
	<-k.done
}

func (k *Keeper) processLoop() {
	defer close(k.done)
	for job := range k.pending {
		if err := k.persist(job); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"uid":         k.principal.UID,
				"exercise_id": job.inc.ExerciseID,
			}).Error("Failed to persist score increment")
		}
	}
}

// persist writes one increment. It outlives the session context that
// emitted it so an ended session still records its last answer.
func (k *Keeper) persist(job scoreJob) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(job.ctx), persistTimeout)
	defer cancel()

	inc := job.inc
	u, err := k.users.IncrementTotals(ctx, k.principal.UID, k.principal.Username, inc.Points, inc.Exercises)
	if err != nil {
		return err
	}

	var errs []error
	if k.events != nil {
		err := k.events.AppendScoreEvent(ctx, store.ScoreEventData{
			UID:        k.principal.UID,
			Username:   k.principal.Username,
			SessionID:  inc.SessionID,
			ExerciseID: inc.ExerciseID,
			Topic:      string(inc.Topic),
			Difficulty: inc.Difficulty.String(),
			Points:     inc.Points,
			Exercises:  inc.Exercises,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	if k.publisher != nil {
		err := k.publisher.PublishScore(ctx, events.ScoreRecorded{
			UID:                k.principal.UID,
			Username:           u.Username,
			SessionID:          inc.SessionID,
			ExerciseID:         inc.ExerciseID,
			Topic:              string(inc.Topic),
			Difficulty:         inc.Difficulty.String(),
			Points:             inc.Points,
			Exercises:          inc.Exercises,
			TotalScore:         u.Score,
			CompletedExercises: u.CompletedExercises,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
