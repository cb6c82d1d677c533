// internal/game/favor.go
package game

import (
	"github.com/google/uuid"
	"github.com/yana-pv/exploding-kittens/internal/models"
)

// pendingFavor is an open Favor: the target owes the requester one card of
// the target's choosing.
type pendingFavor struct {
	requesterID uuid.UUID
	targetID    uuid.UUID
}

// beginFavor opens the favor after the play survived the nope window. The
// target is re-checked here: one eliminated (or emptied out) during the window
// owes nothing and the favor whiffs. A one-card hand transfers immediately
// with nothing to choose; otherwise the target picks a card with GiveCard, and
// on timeout a uniformly random card is transferred instead.
// Assumes the session lock is held.
func (s *GameSession) beginFavor(requester, target *models.Player) {
	if !target.IsAlive || len(target.Hand) == 0 {
		s.message(target.Name + " has nothing to give " + requester.Name + ".")
		return
	}
	if len(target.Hand) == 1 {
		card := target.RemoveCardAt(0)
		requester.Hand = append(requester.Hand, card)
		s.logAction(target.ID, "favor_given", map[string]interface{}{"to": requester.ID.String()})
		s.message(target.Name + "'s only card went to " + requester.Name + ".")
		s.broadcastHand(target)
		s.broadcastHand(requester)
		return
	}

	s.pendingFavor = &pendingFavor{requesterID: requester.ID, targetID: target.ID}
	s.State = StateResolvingAction
	s.messageTo(target.ID, requester.Name+" asked you for a favor. Give them a card.")

	s.favorTimer.schedule(s.Timings.FavorTimeout, func(seq uint64) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.favorTimer.active(seq) || s.pendingFavor == nil {
			return
		}
		s.resolveFavorTimeout()
	})
}

// GiveCard answers the pending favor with the target's chosen card.
func (s *GameSession) GiveCard(playerID uuid.UUID, cardIdx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pf := s.pendingFavor
	if pf == nil || pf.targetID != playerID {
		return ErrInvalidAction
	}
	target := s.playerByID(playerID)
	requester := s.playerByID(pf.requesterID)
	if target == nil || requester == nil {
		return ErrPlayerNotFound
	}
	card := target.CardAt(cardIdx)
	if card == nil {
		return ErrCardNotFound
	}

	s.favorTimer.cancel()
	s.pendingFavor = nil

	target.RemoveCardAt(cardIdx)
	requester.Hand = append(requester.Hand, card)

	s.logAction(playerID, "favor_given", map[string]interface{}{"to": requester.ID.String()})
	s.message(target.Name + " gave a card to " + requester.Name + ".")
	s.broadcastHand(target)
	s.broadcastHand(requester)
	s.finishPending()
	return nil
}

// resolveFavorTimeout transfers one uniformly random card from the target to
// the requester. A target with an empty hand (everything noped or stolen away
// in the meantime) owes nothing.
// Assumes the session lock is held.
func (s *GameSession) resolveFavorTimeout() {
	pf := s.pendingFavor
	s.pendingFavor = nil
	s.favorTimer.cancel()

	target := s.playerByID(pf.targetID)
	requester := s.playerByID(pf.requesterID)
	if target != nil && requester != nil && requester.IsAlive && len(target.Hand) > 0 {
		idx := s.Deck.Rand().Intn(len(target.Hand))
		card := target.CardAt(idx)
		target.RemoveCardAt(idx)
		requester.Hand = append(requester.Hand, card)

		s.logAction(target.ID, "favor_timeout", map[string]interface{}{"to": requester.ID.String()})
		s.message(target.Name + " took too long; a random card went to " + requester.Name + ".")
		s.broadcastHand(target)
		s.broadcastHand(requester)
	}
	s.finishPending()
}
