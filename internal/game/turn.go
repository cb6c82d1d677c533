// internal/game/turn.go
package game

import (
	"log"

	"github.com/google/uuid"
	"github.com/yana-pv/exploding-kittens/internal/models"
)

// turnState tracks what the current player may still do this turn. It resets
// whenever the turn passes or the same player starts an owed extra turn.
type turnState struct {
	hasDrawn     bool
	turnEnded    bool
	skipPlayed   bool
	attackPlayed bool
}

func (t *turnState) reset() {
	*t = turnState{}
}

// canPlayCard: the player may still initiate plays this turn.
func (t *turnState) canPlayCard() bool {
	return !t.turnEnded && !t.hasDrawn
}

// canPlayAnotherCard: plays may be chained until Skip or Attack is played.
func (t *turnState) canPlayAnotherCard() bool {
	return t.canPlayCard() && !t.skipPlayed && !t.attackPlayed
}

// mustDrawCard: Skip and Attack are the only ways out of a turn without drawing.
func (t *turnState) mustDrawCard() bool {
	return !t.hasDrawn && !t.skipPlayed && !t.attackPlayed
}

// cardPlayed records a play's effect on the turn flags.
func (t *turnState) cardPlayed(kind models.CardType) {
	switch kind {
	case models.Skip:
		t.skipPlayed = true
		t.turnEnded = true
	case models.Attack:
		t.attackPlayed = true
		t.turnEnded = true
	}
}

// revert is the explicit rollback for a canceled Skip or Attack, undoing
// exactly what cardPlayed set.
func (t *turnState) revert(kind models.CardType) {
	switch kind {
	case models.Skip:
		t.skipPlayed = false
		t.turnEnded = false
	case models.Attack:
		t.attackPlayed = false
		t.turnEnded = false
	}
}

// cardDrawn finishes the draw step. A player who owes extra turns consumes
// one and keeps playing; otherwise the turn is over.
// Assumes the session lock is held.
func (s *GameSession) cardDrawn() {
	s.turn.hasDrawn = true
	current := s.currentPlayer()
	if current != nil && current.ExtraTurns > 0 {
		current.ExtraTurns--
		s.turn.reset()
		s.messageTo(current.ID, "You drew a card but still owe an extra turn. Go again.")
		s.broadcastState()
		return
	}
	s.completeTurn()
}

// completeTurn resolves the end of a turn. A turn ended by Attack always
// hands play to the next alive player and forfeits any extra turns the
// attacker still owed; otherwise owed extra turns keep the same player going.
// Assumes the session lock is held.
func (s *GameSession) completeTurn() {
	if s.State == StateGameOver {
		return
	}
	current := s.currentPlayer()
	if current == nil {
		s.advanceTurn()
		return
	}

	if s.turn.attackPlayed {
		// Attack takes absolute priority over owed extra turns.
		current.ExtraTurns = 0
		s.advanceTurn()
		return
	}
	if current.ExtraTurns > 0 {
		current.ExtraTurns--
		s.turn.reset()
		s.messageTo(current.ID, "You owe an extra turn. Go again.")
		s.broadcastState()
		return
	}
	s.advanceTurn()
}

// advanceTurn moves play to the next alive player, wrapping around the
// roster. If no alive player can be found the game is over.
// Assumes the session lock is held.
func (s *GameSession) advanceTurn() {
	if s.State == StateGameOver || len(s.Players) == 0 {
		return
	}

	idx := s.CurrentPlayerIndex
	for attempts := 0; attempts < len(s.Players); attempts++ {
		idx = (idx + 1) % len(s.Players)
		if s.Players[idx].IsAlive {
			s.CurrentPlayerIndex = idx
			s.turn.reset()
			s.logAction(s.Players[idx].ID, "turn_start", nil)
			s.broadcastState()
			s.fireEventToPlayer(s.Players[idx].ID, Event{Type: EventNeedToDraw})
			return
		}
	}

	log.Printf("session %s: no alive player to advance to, ending game", s.ID)
	s.endGame(nil)
}

// nextAliveAfter returns the first alive player after the given roster index,
// or nil if none exists besides possibly the player at the index itself.
// Assumes the session lock is held.
func (s *GameSession) nextAliveAfter(idx int) *models.Player {
	for attempts := 1; attempts <= len(s.Players); attempts++ {
		p := s.Players[(idx+attempts)%len(s.Players)]
		if p.IsAlive && (idx+attempts)%len(s.Players) != idx {
			return p
		}
	}
	return nil
}

// attackRecord captures everything needed to undo a noped Attack.
type attackRecord struct {
	attackerID    uuid.UUID
	targetID      uuid.UUID
	prevExtra     int // attacker's ExtraTurns before the relay zeroed them
	appliedAmount int
}

// applyAttack propagates an Attack's extra turns. An explicit target is
// honored when alive; otherwise the next alive player after the attacker is
// hit. An attacker who was themselves under attack relays instead of
// stacking: their own debt is zeroed and the flat +2 moves forward.
// Assumes the session lock is held.
func (s *GameSession) applyAttack(attacker *models.Player, explicitTarget *models.Player) (*attackRecord, error) {
	target := explicitTarget
	if target != nil && (!target.IsAlive || target.ID == attacker.ID) {
		return nil, ErrInvalidAction
	}
	if target == nil {
		target = s.nextAliveAfter(s.indexOf(attacker.ID))
	}
	if target == nil {
		return nil, ErrInvalidAction
	}

	rec := &attackRecord{
		attackerID:    attacker.ID,
		targetID:      target.ID,
		prevExtra:     attacker.ExtraTurns,
		appliedAmount: 2,
	}
	attacker.ExtraTurns = 0
	target.ExtraTurns += rec.appliedAmount
	return rec, nil
}

// revertAttack undoes applyAttack for a canceled Attack.
// Assumes the session lock is held.
func (s *GameSession) revertAttack(rec *attackRecord) {
	if rec == nil {
		return
	}
	if attacker := s.playerByID(rec.attackerID); attacker != nil {
		attacker.ExtraTurns = rec.prevExtra
	}
	if target := s.playerByID(rec.targetID); target != nil {
		target.ExtraTurns -= rec.appliedAmount
		if target.ExtraTurns < 0 {
			target.ExtraTurns = 0
		}
	}
}
