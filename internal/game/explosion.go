// internal/game/explosion.go
package game

import (
	"github.com/google/uuid"
	"github.com/yana-pv/exploding-kittens/internal/models"
	"github.com/yana-pv/exploding-kittens/internal/protocol"
)

// pendingExplosion is a drawn Exploding Kitten awaiting a Defuse. The kitten
// stays out of both piles until the race resolves.
type pendingExplosion struct {
	card  *models.Card
	timer actionTimer
}

// Defuse placement codes carried on the PlayDefuse command.
const (
	PlaceTop    = "top"
	PlaceBottom = "bottom"
	PlaceRandom = "random"
	PlaceIndex  = "index"
)

// beginExplosion handles a drawn Exploding Kitten. A player with no Defuse is
// eliminated on the spot; otherwise the countdown starts and the player must
// answer with PlayDefuse before it fires.
// Assumes the session lock is held.
func (s *GameSession) beginExplosion(player *models.Player, kitten *models.Card) {
	s.fireEvent(Event{Type: EventCardPlayed, Payload: protocol.CardPlayedInfo{
		GameID:   s.ID,
		PlayerID: player.ID,
		Cards:    []protocol.CardInfo{cardInfo(kitten)},
		Detail:   "exploding kitten drawn",
	}})
	s.message(player.Name + " drew an Exploding Kitten!")

	if !player.HasCardOfType(models.Defuse) {
		s.Deck.Discard(kitten)
		s.eliminatePlayer(player, "exploded")
		return
	}

	pe := &pendingExplosion{card: kitten}
	s.pendingExplosions[player.ID] = pe
	s.State = StateResolvingAction

	playerID := player.ID
	pe.timer.schedule(s.Timings.ExplosionTimeout, func(seq uint64) {
		s.mu.Lock()
		defer s.mu.Unlock()
		cur, ok := s.pendingExplosions[playerID]
		if !ok || cur != pe || !pe.timer.active(seq) {
			return
		}
		s.resolveExplosion(playerID)
	})
}

// PlayDefuse answers a pending explosion. placement selects where the kitten
// returns to the draw pile: top, bottom, random, or an explicit index
// (position 0 is the next draw). The defuse counts as the turn's draw.
func (s *GameSession) PlayDefuse(playerID uuid.UUID, cardIdx int, placement string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pe, ok := s.pendingExplosions[playerID]
	if !ok {
		return ErrInvalidAction
	}
	player := s.playerByID(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}

	card := player.CardAt(cardIdx)
	if card == nil {
		return ErrCardNotFound
	}
	if card.Type != models.Defuse {
		return ErrInvalidAction
	}

	pe.timer.cancel()
	delete(s.pendingExplosions, playerID)

	player.RemoveCardAt(cardIdx)
	s.Deck.Discard(card)

	switch placement {
	case PlaceTop:
		s.Deck.InsertCard(pe.card, 0)
	case PlaceBottom:
		s.Deck.InsertCard(pe.card, len(s.Deck.DrawPile))
	case PlaceIndex:
		s.Deck.InsertCard(pe.card, position)
	default:
		s.Deck.InsertCardRandom(pe.card)
	}

	s.logAction(playerID, "play_defuse", map[string]interface{}{"placement": placement})
	s.message(player.Name + " defused the kitten and slipped it back into the deck.")
	s.broadcastHand(player)

	if s.activeAction == nil && !s.hasOpenPending() {
		s.State = StatePlayerTurn
	}
	s.cardDrawn()
	return nil
}

// resolveExplosion fires when the countdown runs out: the kitten goes to the
// discard pile and the player is eliminated.
// Assumes the session lock is held.
func (s *GameSession) resolveExplosion(playerID uuid.UUID) {
	pe, ok := s.pendingExplosions[playerID]
	if !ok {
		return
	}
	pe.timer.cancel()
	delete(s.pendingExplosions, playerID)
	s.Deck.Discard(pe.card)

	if s.activeAction == nil && !s.hasOpenPending() {
		s.State = StatePlayerTurn
	}

	if player := s.playerByID(playerID); player != nil && player.IsAlive {
		s.logAction(playerID, "explosion_timeout", nil)
		s.eliminatePlayer(player, "exploded")
	}
}
