// internal/game/explosion_test.go
package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yana-pv/exploding-kittens/internal/models"
)

func TestDefusePlacesKittenOnTop(t *testing.T) {
	s, _ := setupTestGame(t, 3)
	p0 := s.Players[0]
	setHand(p0, models.Defuse, models.TacoCat)
	stackTop(s, models.ExplodingKitten)
	before := totalCards(s)

	require.NoError(t, s.DrawCard(p0.ID))
	assert.Equal(t, StateResolvingAction, s.State)
	assert.Contains(t, s.pendingExplosions, p0.ID)
	assert.Equal(t, before, totalCards(s), "kitten in flight still counts")

	require.NoError(t, s.PlayDefuse(p0.ID, 0, PlaceTop, 0))

	assert.Equal(t, models.ExplodingKitten, s.Deck.DrawPile[0].Type)
	assert.Equal(t, models.Defuse, s.Deck.TopDiscard().Type)
	assert.Empty(t, s.pendingExplosions)
	assert.True(t, p0.IsAlive)
	assert.Equal(t, 1, s.CurrentPlayerIndex, "the defused draw still ends the turn")
	assert.Equal(t, before, totalCards(s))
}

func TestDefusePlacesKittenAtIndex(t *testing.T) {
	s, _ := setupTestGame(t, 2)
	p0 := s.Players[0]
	setHand(p0, models.Defuse)
	stackTop(s, models.ExplodingKitten)

	require.NoError(t, s.DrawCard(p0.ID))
	require.NoError(t, s.PlayDefuse(p0.ID, 0, PlaceIndex, 3))

	assert.Equal(t, models.ExplodingKitten, s.Deck.DrawPile[3].Type)
}

func TestDefusePlacesKittenAtBottom(t *testing.T) {
	s, _ := setupTestGame(t, 2)
	p0 := s.Players[0]
	setHand(p0, models.Defuse)
	stackTop(s, models.ExplodingKitten)

	require.NoError(t, s.DrawCard(p0.ID))
	require.NoError(t, s.PlayDefuse(p0.ID, 0, PlaceBottom, 0))

	pile := s.Deck.DrawPile
	assert.Equal(t, models.ExplodingKitten, pile[len(pile)-1].Type)
}

func TestDefuseRequiresPendingExplosionAndDefuseCard(t *testing.T) {
	s, _ := setupTestGame(t, 2)
	p0 := s.Players[0]

	assert.ErrorIs(t, s.PlayDefuse(p0.ID, 0, PlaceTop, 0), ErrInvalidAction)

	setHand(p0, models.TacoCat, models.Defuse)
	stackTop(s, models.ExplodingKitten)
	require.NoError(t, s.DrawCard(p0.ID))

	assert.ErrorIs(t, s.PlayDefuse(p0.ID, 0, PlaceTop, 0), ErrInvalidAction)
	assert.ErrorIs(t, s.PlayDefuse(p0.ID, 9, PlaceTop, 0), ErrCardNotFound)
	require.NoError(t, s.PlayDefuse(p0.ID, 1, PlaceTop, 0))
}

func TestExplosionWithoutDefuseEliminatesImmediately(t *testing.T) {
	s, mb := setupTestGame(t, 3)
	p0 := s.Players[0]
	setHand(p0, models.TacoCat, models.Skip)
	stackTop(s, models.ExplodingKitten)
	before := totalCards(s)

	require.NoError(t, s.DrawCard(p0.ID))

	assert.False(t, p0.IsAlive)
	assert.Empty(t, p0.Hand, "hand dispersed on elimination")
	assert.Empty(t, s.pendingExplosions)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, before, totalCards(s))
	assert.NotEmpty(t, mb.publicOfType(EventPlayerEliminated))

	// The kitten lands in the discard pile, never back in a hand.
	found := false
	for _, c := range s.Deck.DiscardPile {
		if c.Type == models.ExplodingKitten {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExplosionTimeoutEliminates(t *testing.T) {
	s, _ := setupTestGame(t, 3)
	s.Timings.ExplosionTimeout = 20 * time.Millisecond
	p0 := s.Players[0]
	setHand(p0, models.Defuse, models.TacoCat)
	stackTop(s, models.ExplodingKitten)
	before := totalCards(s)

	require.NoError(t, s.DrawCard(p0.ID))

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !p0.IsAlive
	}, 2*time.Second, 5*time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.pendingExplosions)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, before, totalCards(s))
}

func TestDefuseBeatsTimeoutRace(t *testing.T) {
	s, _ := setupTestGame(t, 2)
	s.Timings.ExplosionTimeout = 30 * time.Millisecond
	p0 := s.Players[0]
	setHand(p0, models.Defuse)
	stackTop(s, models.ExplodingKitten)

	require.NoError(t, s.DrawCard(p0.ID))
	require.NoError(t, s.PlayDefuse(p0.ID, 0, PlaceRandom, 0))

	// Give the canceled timer ample time to fire if the sequence guard were
	// broken.
	time.Sleep(100 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.True(t, p0.IsAlive)
	assert.Equal(t, StatePlayerTurn, s.State)
}

func TestLastExplosionEndsGame(t *testing.T) {
	s, mb := setupTestGame(t, 2)
	p0, p1 := s.Players[0], s.Players[1]
	setHand(p0, models.TacoCat)
	stackTop(s, models.ExplodingKitten)

	require.NoError(t, s.DrawCard(p0.ID))

	assert.Equal(t, StateGameOver, s.State)
	require.NotNil(t, s.Winner)
	assert.Equal(t, p1.ID, s.Winner.ID)
	assert.NotEmpty(t, mb.publicOfType(EventGameOver))

	assert.ErrorIs(t, s.DrawCard(p1.ID), ErrInvalidAction)
}
