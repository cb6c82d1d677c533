// internal/game/nope.go
package game

import (
	"github.com/google/uuid"
	"github.com/yana-pv/exploding-kittens/internal/models"
	"github.com/yana-pv/exploding-kittens/internal/protocol"
)

// ActionRecord is the session's one open counterable play. It lives on the
// session for exactly the duration of the nope window; resolution either runs
// the play's effect or its rollback, depending on nope parity.
type ActionRecord struct {
	ID       uuid.UUID
	PlayerID uuid.UUID
	Kind     models.CardType
	Cards    []*models.Card

	nopedBy   map[uuid.UUID]struct{}
	onResolve func()
	onCancel  func()
}

// beginAction opens the nope window for a play whose cards have already been
// removed from the player's hand. onResolve and onCancel own card disposition:
// resolved plays discard their cards, canceled single-card plays return them
// to the hand, canceled combos discard them anyway (combo cards stay spent).
// A non-positive nope window resolves synchronously.
// Assumes the session lock is held.
func (s *GameSession) beginAction(player *models.Player, kind models.CardType, cards []*models.Card, onResolve, onCancel func()) {
	id, _ := uuid.NewRandom()
	rec := &ActionRecord{
		ID:        id,
		PlayerID:  player.ID,
		Kind:      kind,
		Cards:     cards,
		nopedBy:   make(map[uuid.UUID]struct{}),
		onResolve: onResolve,
		onCancel:  onCancel,
	}
	s.activeAction = rec
	s.State = StateResolvingAction

	s.broadcastHand(player)
	s.fireEvent(Event{Type: EventCardPlayed, Payload: protocol.CardPlayedInfo{
		GameID:   s.ID,
		PlayerID: player.ID,
		Cards:    cardInfos(cards),
		ActionID: rec.ID,
		Pending:  true,
	}})

	if s.Timings.NopeWindow <= 0 {
		s.resolveAction()
		return
	}

	s.nopeTimer.schedule(s.Timings.NopeWindow, func(seq uint64) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.nopeTimer.active(seq) {
			return
		}
		if s.activeAction == nil || s.activeAction.ID != rec.ID {
			return
		}
		s.resolveAction()
	})
}

// resolveAction closes the nope window and applies the parity rule: an odd
// number of distinct Nope players cancels the play.
// Assumes the session lock is held.
func (s *GameSession) resolveAction() {
	rec := s.activeAction
	if rec == nil {
		return
	}
	s.activeAction = nil
	s.nopeTimer.cancel()

	canceled := len(rec.nopedBy)%2 == 1
	if canceled {
		if rec.onCancel != nil {
			rec.onCancel()
		}
	} else if rec.onResolve != nil {
		rec.onResolve()
	}

	s.logAction(rec.PlayerID, "action_resolved", map[string]interface{}{
		"kind":     rec.Kind.String(),
		"canceled": canceled,
		"nopes":    len(rec.nopedBy),
	})
	s.fireEvent(Event{Type: EventCardPlayed, Payload: protocol.CardPlayedInfo{
		GameID:   s.ID,
		PlayerID: rec.PlayerID,
		Cards:    cardInfos(rec.Cards),
		ActionID: rec.ID,
		Canceled: canceled,
	}})

	s.finishPending()
}

// finishPending returns the session to the play phase once no sub-action
// remains open, then finishes the turn if a resolved Skip or Attack ended it.
// Assumes the session lock is held.
func (s *GameSession) finishPending() {
	if s.State != StateResolvingAction {
		return
	}
	if s.activeAction != nil || s.hasOpenPending() {
		return
	}
	s.State = StatePlayerTurn
	if s.turn.turnEnded {
		s.completeTurn()
		return
	}
	s.broadcastState()
}

// PlayNope counters the open action with a Nope card. Any alive player may
// nope, including the original actor countering a counter; each player counts
// at most once toward parity. The window is not extended by a nope.
func (s *GameSession) PlayNope(playerID uuid.UUID, cardIdx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeAction == nil {
		return ErrInvalidAction
	}
	player := s.playerByID(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if !player.IsAlive {
		return ErrPlayerNotAlive
	}
	if _, already := s.activeAction.nopedBy[playerID]; already {
		return ErrInvalidAction
	}

	card := player.CardAt(cardIdx)
	if card == nil {
		return ErrCardNotFound
	}
	if card.Type != models.Nope {
		return ErrInvalidAction
	}

	player.RemoveCardAt(cardIdx)
	s.Deck.Discard(card)
	s.activeAction.nopedBy[playerID] = struct{}{}
	s.broadcastHand(player)
	s.logAction(playerID, "play_nope", map[string]interface{}{"action": s.activeAction.ID.String()})
	s.message(player.Name + " played Nope!")
	s.broadcastState()
	return nil
}
