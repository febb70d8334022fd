package server

import (
	"testing"

	"github.com/abhisek/mathdrill/internal/events"
)

func TestHubDropsForSlowSubscribers(t *testing.T) {
	h := newHub()
	sub, unsubscribe := h.subscribe()
	defer unsubscribe()

	for i := 0; i < cap(sub.updates)+5; i++ {
		h.publish(events.ScoreRecorded{Points: i})
	}
	if got := len(sub.updates); got != cap(sub.updates) {
		t.Errorf("queued %d updates, want %d", got, cap(sub.updates))
	}
	if first := <-sub.updates; first.Points != 0 {
		t.Errorf("first update points = %d, want 0", first.Points)
	}
}

func TestHubShutdown(t *testing.T) {
	h := newHub()
	sub, unsubscribe := h.subscribe()
	h.shutdown()
	h.shutdown()
	unsubscribe()

	select {
	case <-sub.quit:
	default:
		t.Fatal("subscriber not told to quit")
	}

	late, _ := h.subscribe()
	select {
	case <-late.quit:
	default:
		t.Fatal("subscriber after shutdown not told to quit")
	}
	h.publish(events.ScoreRecorded{})
}
