// internal/game/session_store.go
package game

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	sweepInterval = time.Minute
	maxSessionAge = time.Hour
)

// SessionStore is the registry of live sessions. A background sweep removes
// sessions that have finished, emptied out, or outlived the maximum age.
// Holders of a session reference obtained before removal can keep using it;
// removal only stops new lookups.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*GameSession

	done      chan struct{}
	closeOnce sync.Once
}

// NewSessionStore creates the registry and starts its sweep goroutine.
func NewSessionStore() *SessionStore {
	st := &SessionStore{
		sessions: make(map[uuid.UUID]*GameSession),
		done:     make(chan struct{}),
	}
	go st.sweepLoop()
	return st
}

// Add registers a session.
func (st *SessionStore) Add(s *GameSession) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

// Get looks up a session by id.
func (st *SessionStore) Get(id uuid.UUID) (*GameSession, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes a session from the registry.
func (st *SessionStore) Delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// List returns a snapshot of all registered sessions.
func (st *SessionStore) List() []*GameSession {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*GameSession, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of registered sessions.
func (st *SessionStore) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close stops the sweep goroutine.
func (st *SessionStore) Close() {
	st.closeOnce.Do(func() { close(st.done) })
}

func (st *SessionStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-st.done:
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

// Sweep removes every session that is finished, has no players left, or is
// older than the maximum age.
func (st *SessionStore) Sweep() {
	for _, s := range st.List() {
		if sweepEligible(s) {
			log.Printf("session store: sweeping session %s (players=%d age=%s)",
				s.ID, s.PlayerCount(), s.Age().Round(time.Second))
			st.Delete(s.ID)
		}
	}
}

func sweepEligible(s *GameSession) bool {
	return s.Finished() || s.PlayerCount() == 0 || s.Age() > maxSessionAge
}
