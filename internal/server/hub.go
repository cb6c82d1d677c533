// internal/server/hub.go
package server

import (
	"sync"

	"github.com/google/uuid"
	"github.com/yana-pv/exploding-kittens/internal/game"
)

// EventHub fans session events out to spectators. Subscribers get a buffered
// channel; a slow subscriber drops events rather than blocking game logic.
type EventHub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[chan game.Event]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[uuid.UUID]map[chan game.Event]struct{})}
}

// Subscribe registers a listener for one session's events. The returned
// cancel function must be called when the listener goes away; it closes the
// channel.
func (h *EventHub) Subscribe(gameID uuid.UUID, buf int) (<-chan game.Event, func()) {
	ch := make(chan game.Event, buf)

	h.mu.Lock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[chan game.Event]struct{})
	}
	h.subs[gameID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[gameID], ch)
			if len(h.subs[gameID]) == 0 {
				delete(h.subs, gameID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the session, dropping it
// for subscribers whose buffer is full.
func (h *EventHub) Publish(gameID uuid.UUID, ev game.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[gameID] {
		select {
		case ch <- ev:
		default:
		}
	}
}
