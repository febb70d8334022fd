package scoring

import (
	"context"
	"fmt"

	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/session"
	"github.com/abhisek/mathdrill/internal/store"
)

// Session lifecycle actions stored with session events.
const (
	ActionStart = "start"
	ActionEnd   = "end"
)

// RecordStart stores a session start event. Guests are not recorded.
func (k *Keeper) RecordStart(ctx context.Context, sessionID string, topics []problemgen.Topic, d problemgen.Difficulty) error {
	if !k.persistent() || k.events == nil {
		return nil
	}
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = string(t)
	}
	err := k.events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:  sessionID,
		UID:        k.principal.UID,
		Action:     ActionStart,
		Topics:     names,
		Difficulty: d.String(),
	})
	if err != nil {
		return fmt.Errorf("record session start: %w", err)
	}
	return nil
}

// RecordEnd stores the summary of an ended session. A nil summary means no
// session was running.
func (k *Keeper) RecordEnd(ctx context.Context, s *session.Summary) error {
	if s == nil || !k.persistent() || k.events == nil {
		return nil
	}
	topics := make([]string, 0, len(s.TopicResults))
	for _, tr := range s.TopicResults {
		topics = append(topics, string(tr.Topic))
	}
	err := k.events.AppendSessionEvent(context.WithoutCancel(ctx), store.SessionEventData{
		SessionID:          s.SessionID,
		UID:                k.principal.UID,
		Action:             ActionEnd,
		Topics:             topics,
		Difficulty:         s.Difficulty.String(),
		ExercisesCompleted: s.ExercisesCompleted,
		CorrectAnswers:     s.Correct,
		Score:              s.Score,
		DurationSecs:       int(s.Duration.Seconds()),
	})
	if err != nil {
		return fmt.Errorf("record session end: %w", err)
	}
	return nil
}
