// internal/game/nope_test.go
package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yana-pv/exploding-kittens/internal/models"
)

func nopeIdx(t *testing.T, p *models.Player) int {
	t.Helper()
	for i, c := range p.Hand {
		if c.Type == models.Nope {
			return i
		}
	}
	t.Fatalf("player %s holds no Nope", p.Name)
	return -1
}

func TestNopeCancelsSkipAndReturnsCard(t *testing.T) {
	s, _ := setupTestGame(t, 3)
	p0, p1 := s.Players[0], s.Players[1]
	setHand(p0, models.Skip)
	setHand(p1, models.Nope)

	require.NoError(t, s.PlayCard(p0.ID, 0, uuid.Nil))
	require.NoError(t, s.PlayNope(p1.ID, nopeIdx(t, p1)))
	resolveNow(s)

	// Canceled: the skip comes home, the turn flags roll back and p0 may
	// still act.
	assert.Equal(t, 0, s.CurrentPlayerIndex)
	assert.Equal(t, StatePlayerTurn, s.State)
	require.Len(t, p0.Hand, 1)
	assert.Equal(t, models.Skip, p0.Hand[0].Type)
	assert.Empty(t, p1.Hand, "the nope itself is spent")

	// And the returned card is playable again.
	require.NoError(t, s.PlayCard(p0.ID, 0, uuid.Nil))
	resolveNow(s)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
}

func TestNopeParityTwoRestores(t *testing.T) {
	s, _ := setupTestGame(t, 3)
	p0, p1 := s.Players[0], s.Players[1]
	setHand(p0, models.Skip, models.Nope)
	setHand(p1, models.Nope)

	require.NoError(t, s.PlayCard(p0.ID, 0, uuid.Nil))
	require.NoError(t, s.PlayNope(p1.ID, nopeIdx(t, p1)))
	// Yup: the actor counters the counter.
	require.NoError(t, s.PlayNope(p0.ID, nopeIdx(t, p0)))
	resolveNow(s)

	assert.Equal(t, 1, s.CurrentPlayerIndex, "two nopes restore the skip")
	assert.Empty(t, p0.Hand)
}

func TestNopeParityThreeCancels(t *testing.T) {
	s, _ := setupTestGame(t, 3)
	p0, p1, p2 := s.Players[0], s.Players[1], s.Players[2]
	setHand(p0, models.Attack, models.Nope)
	setHand(p1, models.Nope)
	setHand(p2, models.Nope)

	require.NoError(t, s.PlayCard(p0.ID, 0, uuid.Nil))
	require.Equal(t, 2, p1.ExtraTurns, "attack applies eagerly")

	require.NoError(t, s.PlayNope(p1.ID, nopeIdx(t, p1)))
	require.NoError(t, s.PlayNope(p0.ID, nopeIdx(t, p0)))
	require.NoError(t, s.PlayNope(p2.ID, nopeIdx(t, p2)))
	resolveNow(s)

	// Odd count: canceled. The eager attack propagation is rolled back.
	assert.Equal(t, 0, p1.ExtraTurns)
	assert.Equal(t, 0, s.CurrentPlayerIndex)
	require.Len(t, p0.Hand, 1)
	assert.Equal(t, models.Attack, p0.Hand[0].Type)
}

func TestNopeRejectedTwiceBySamePlayer(t *testing.T) {
	s, _ := setupTestGame(t, 3)
	p0, p1 := s.Players[0], s.Players[1]
	setHand(p0, models.Skip)
	setHand(p1, models.Nope, models.Nope)

	require.NoError(t, s.PlayCard(p0.ID, 0, uuid.Nil))
	require.NoError(t, s.PlayNope(p1.ID, 0))
	assert.ErrorIs(t, s.PlayNope(p1.ID, 0), ErrInvalidAction)
}

func TestNopeRequiresActiveActionAndNopeCard(t *testing.T) {
	s, _ := setupTestGame(t, 3)
	p0, p1 := s.Players[0], s.Players[1]

	assert.ErrorIs(t, s.PlayNope(p1.ID, 0), ErrInvalidAction)

	setHand(p0, models.Skip)
	setHand(p1, models.TacoCat)
	require.NoError(t, s.PlayCard(p0.ID, 0, uuid.Nil))
	assert.ErrorIs(t, s.PlayNope(p1.ID, 0), ErrInvalidAction)
	assert.ErrorIs(t, s.PlayNope(p1.ID, 5), ErrCardNotFound)
}

func TestNopeWindowExpiresOnItsOwn(t *testing.T) {
	s, _ := setupTestGame(t, 2)
	s.Timings.NopeWindow = 20 * time.Millisecond
	p0 := s.Players[0]
	setHand(p0, models.Skip)

	require.NoError(t, s.PlayCard(p0.ID, 0, uuid.Nil))

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.CurrentPlayerIndex == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestZeroNopeWindowResolvesSynchronously(t *testing.T) {
	s, _ := setupTestGame(t, 2)
	s.Timings.NopeWindow = 0
	p0 := s.Players[0]
	setHand(p0, models.Skip)

	require.NoError(t, s.PlayCard(p0.ID, 0, uuid.Nil))
	assert.Equal(t, 1, s.CurrentPlayerIndex)
}

func TestNoPlaysWhileActionPending(t *testing.T) {
	s, _ := setupTestGame(t, 3)
	p0 := s.Players[0]
	setHand(p0, models.Skip, models.Skip)

	require.NoError(t, s.PlayCard(p0.ID, 0, uuid.Nil))
	assert.ErrorIs(t, s.PlayCard(p0.ID, 0, uuid.Nil), ErrInvalidAction)
	assert.ErrorIs(t, s.DrawCard(p0.ID), ErrInvalidAction)
}

func TestEliminationDuringWindowDiscardsThePlay(t *testing.T) {
	s, _ := setupTestGame(t, 3)
	p0, p1 := s.Players[0], s.Players[1]
	setHand(p0, models.Skip, models.Shuffle)
	setHand(p1, models.Nope)
	before := totalCards(s)

	require.NoError(t, s.PlayCard(p0.ID, 0, uuid.Nil))
	require.NoError(t, s.PlayNope(p1.ID, 0))

	// The actor drops mid-window; the pending Skip must not come back to a
	// dead hand.
	s.HandleDisconnect(p0.ID)
	resolveNow(s)

	assert.False(t, p0.IsAlive)
	assert.Empty(t, p0.Hand)
	assert.Equal(t, before, totalCards(s))
	found := false
	for _, c := range s.Deck.DiscardPile {
		if c.Type == models.Skip {
			found = true
		}
	}
	assert.True(t, found, "the played Skip lands in the discard pile")
	assert.Equal(t, StatePlayerTurn, s.State)
	assert.Equal(t, p1.ID, s.currentPlayer().ID)
}
