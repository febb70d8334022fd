package server

import (
	"sync"

	"github.com/abhisek/mathdrill/internal/events"
)

// hub fans score events out to websocket sessions. Slow sessions miss
// updates rather than block the publisher.
type hub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	updates chan events.ScoreRecorded
	quit    chan struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[*subscriber]struct{})}
}

// subscribe registers a session. The returned func unregisters it.
func (h *hub) subscribe() (*subscriber, func()) {
	sub := &subscriber{
		updates: make(chan events.ScoreRecorded, 8),
		quit:    make(chan struct{}),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.quit)
		return sub, func() {}
	}
	h.subs[sub] = struct{}{}
	return sub, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, sub)
	}
}

func (h *hub) publish(ev events.ScoreRecorded) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.updates <- ev:
		default:
		}
	}
}

// shutdown tells every session to close.
func (h *hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		close(sub.quit)
	}
	h.subs = nil
}
