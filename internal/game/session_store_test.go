// internal/game/session_store_test.go
package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreAddGetDelete(t *testing.T) {
	st := NewSessionStore()
	defer st.Close()

	s := NewGameSession(testTimings())
	st.Add(s)

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Count())

	st.Delete(s.ID)
	_, ok = st.Get(s.ID)
	assert.False(t, ok)
}

func TestSweepRemovesOnlyEligibleSessions(t *testing.T) {
	st := NewSessionStore()
	defer st.Close()

	finished := NewGameSession(testTimings())
	if _, err := finished.AddPlayer("a"); err != nil {
		t.Fatal(err)
	}
	finished.State = StateGameOver

	empty := NewGameSession(testTimings())

	stale := NewGameSession(testTimings())
	if _, err := stale.AddPlayer("b"); err != nil {
		t.Fatal(err)
	}
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)

	active := NewGameSession(testTimings())
	if _, err := active.AddPlayer("c"); err != nil {
		t.Fatal(err)
	}

	st.Add(finished)
	st.Add(empty)
	st.Add(stale)
	st.Add(active)

	st.Sweep()

	_, ok := st.Get(finished.ID)
	assert.False(t, ok, "finished sessions are swept")
	_, ok = st.Get(empty.ID)
	assert.False(t, ok, "empty sessions are swept")
	_, ok = st.Get(stale.ID)
	assert.False(t, ok, "over-age sessions are swept")
	_, ok = st.Get(active.ID)
	assert.True(t, ok, "live sessions stay")
}

func TestSweepSafeAgainstHeldReference(t *testing.T) {
	st := NewSessionStore()
	defer st.Close()

	s := NewGameSession(testTimings())
	st.Add(s)

	held, ok := st.Get(s.ID)
	require.True(t, ok)

	st.Sweep() // session is empty, so it goes

	_, ok = st.Get(s.ID)
	assert.False(t, ok)
	// The held reference keeps working after removal.
	_, err := held.AddPlayer("late")
	assert.NoError(t, err)
}
