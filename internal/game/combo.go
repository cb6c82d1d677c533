// internal/game/combo.go
package game

import (
	"sort"

	"github.com/google/uuid"
	"github.com/yana-pv/exploding-kittens/internal/models"
)

// Combo shapes.
const (
	comboPair   = 2
	comboTriple = 3
	comboFive   = 5
)

// pendingSteal is a resolved pair combo still waiting for its victim.
type pendingSteal struct {
	initiatorID uuid.UUID
}

// pendingDiscardChoice is a resolved five-card combo waiting for the player
// to pick a discard-pile card. limit bounds the eligible indices to the
// discard contents as they stood before the combo cards themselves landed.
type pendingDiscardChoice struct {
	initiatorID uuid.UUID
	limit       int
}

// ValidateCombo checks whether a set of cards forms a playable combo. Pairs
// and triples match when every card shares the same Type or the same IconID
// (cat cards group by icon); a five-card combo needs five pairwise-distinct
// IconIDs. Kittens and Defuses never combine.
func ValidateCombo(cards []*models.Card) error {
	for _, c := range cards {
		if c.Type == models.ExplodingKitten || c.Type == models.Defuse {
			return ErrInvalidAction
		}
	}
	switch len(cards) {
	case comboPair, comboTriple:
		sameType, sameIcon := true, true
		for _, c := range cards[1:] {
			if c.Type != cards[0].Type {
				sameType = false
			}
			if c.IconID != cards[0].IconID {
				sameIcon = false
			}
		}
		if !sameType && !sameIcon {
			return ErrInvalidAction
		}
		return nil
	case comboFive:
		seen := make(map[int]struct{}, comboFive)
		for _, c := range cards {
			if _, dup := seen[c.IconID]; dup {
				return ErrInvalidAction
			}
			seen[c.IconID] = struct{}{}
		}
		return nil
	default:
		return ErrInvalidAction
	}
}

// PlayCombo plays a card combination from the current player's hand.
//
// Pair: steals a uniformly random card from the target; with no target given,
// a pending choice waits for ChooseTarget. Triple: names a card type and takes
// it from the target if they hold one (target and name are required up front).
// Five different: pick any non-kitten card back from the discard pile; with
// nothing to pick, the cards are spent for no effect.
// Like single plays, the whole combo can be noped; canceled combo cards stay
// in the discard pile.
func (s *GameSession) PlayCombo(playerID uuid.UUID, cardIdxs []int, targetID uuid.UUID, named models.CardType, hasNamed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.requireCurrentPlayer(playerID)
	if err != nil {
		return err
	}
	if !s.turn.canPlayAnotherCard() {
		return ErrInvalidAction
	}

	cards, err := s.cardsAt(player, cardIdxs)
	if err != nil {
		return err
	}
	if err := ValidateCombo(cards); err != nil {
		return err
	}

	var target *models.Player
	if targetID != uuid.Nil {
		if target = s.playerByID(targetID); target == nil {
			return ErrPlayerNotFound
		}
		if !target.IsAlive || target.ID == playerID {
			return ErrInvalidAction
		}
	}

	size := len(cards)
	if size == comboTriple {
		if target == nil || !hasNamed {
			return ErrInvalidAction
		}
		if named == models.ExplodingKitten {
			return ErrInvalidAction
		}
	}

	s.removeCardsAt(player, cardIdxs)
	s.logAction(playerID, "play_combo", map[string]interface{}{
		"size": size,
		"type": cards[0].Type.String(),
	})

	s.beginAction(player, cards[0].Type, cards,
		func() {
			// Combo cards land in the discard pile before the effect, so the
			// five-card choice cannot take back the combo's own cards.
			limit := len(s.Deck.DiscardPile)
			for _, c := range cards {
				s.Deck.Discard(c)
			}
			switch size {
			case comboPair:
				if target != nil {
					s.resolveSteal(player, target, comboPair, 0)
					return
				}
				s.beginSteal(player)
			case comboTriple:
				s.resolveSteal(player, target, comboTriple, named)
			case comboFive:
				if limit == 0 {
					s.message(player.Name + "'s combo found an empty discard pile.")
					return
				}
				s.beginDiscardChoice(player, limit)
			}
		},
		func() {
			// Spent either way.
			for _, c := range cards {
				s.Deck.Discard(c)
			}
		})
	return nil
}

// beginSteal waits for the pair player to pick a victim with ChooseTarget.
// Assumes the session lock is held.
func (s *GameSession) beginSteal(player *models.Player) {
	s.pendingSteal = &pendingSteal{initiatorID: player.ID}
	s.State = StateResolvingAction
	s.messageTo(player.ID, "Pick a player to steal from.")

	s.choiceTimer.schedule(s.Timings.ChoiceTimeout, func(seq uint64) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.choiceTimer.active(seq) || s.pendingSteal == nil {
			return
		}
		s.pendingSteal = nil
		s.choiceTimer.cancel()
		s.message("The steal expired unclaimed.")
		s.finishPending()
	})
}

// ChooseTarget answers a pending pair steal with the victim.
func (s *GameSession) ChooseTarget(playerID, targetID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps := s.pendingSteal
	if ps == nil || ps.initiatorID != playerID {
		return ErrInvalidAction
	}
	player := s.playerByID(playerID)
	target := s.playerByID(targetID)
	if player == nil || target == nil {
		return ErrPlayerNotFound
	}
	if !target.IsAlive || target.ID == playerID {
		return ErrInvalidAction
	}

	s.choiceTimer.cancel()
	s.pendingSteal = nil
	s.resolveSteal(player, target, comboPair, 0)
	s.finishPending()
	return nil
}

// resolveSteal executes a pair or triple theft. A pair takes a uniformly
// random card; a triple takes the named type if the target holds one, and
// whiffs otherwise with the combo cards already spent.
// Assumes the session lock is held.
func (s *GameSession) resolveSteal(player, target *models.Player, size int, named models.CardType) {
	var card *models.Card
	switch size {
	case comboPair:
		if len(target.Hand) > 0 {
			card = target.RemoveCardAt(s.Deck.Rand().Intn(len(target.Hand)))
		}
	case comboTriple:
		card = target.RemoveCardOfType(named)
	}

	if card == nil {
		s.logAction(player.ID, "combo_miss", map[string]interface{}{"target": target.ID.String()})
		s.message(player.Name + " came up empty against " + target.Name + ".")
		return
	}

	player.Hand = append(player.Hand, card)
	s.logAction(player.ID, "combo_steal", map[string]interface{}{"target": target.ID.String()})
	s.message(player.Name + " took a card from " + target.Name + ".")
	s.broadcastHand(player)
	s.broadcastHand(target)
}

// beginDiscardChoice waits for the five-combo player to pick a discard card.
// Assumes the session lock is held.
func (s *GameSession) beginDiscardChoice(player *models.Player, limit int) {
	s.pendingChoice = &pendingDiscardChoice{initiatorID: player.ID, limit: limit}
	s.State = StateResolvingAction
	s.messageTo(player.ID, "Pick a card from the discard pile.")

	s.choiceTimer.schedule(s.Timings.ChoiceTimeout, func(seq uint64) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.choiceTimer.active(seq) || s.pendingChoice == nil {
			return
		}
		s.pendingChoice = nil
		s.choiceTimer.cancel()
		s.message("The discard pick expired unclaimed.")
		s.finishPending()
	})
}

// TakeFromDiscard answers a pending five-combo choice with a discard index.
// Kittens cannot be taken into a hand.
func (s *GameSession) TakeFromDiscard(playerID uuid.UUID, discardIdx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pc := s.pendingChoice
	if pc == nil || pc.initiatorID != playerID {
		return ErrInvalidAction
	}
	player := s.playerByID(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if discardIdx < 0 || discardIdx >= pc.limit {
		return ErrCardNotFound
	}
	if s.Deck.DiscardPile[discardIdx].Type == models.ExplodingKitten {
		return ErrInvalidAction
	}

	card := s.Deck.TakeFromDiscard(discardIdx)
	if card == nil {
		return ErrCardNotFound
	}

	s.choiceTimer.cancel()
	s.pendingChoice = nil

	player.Hand = append(player.Hand, card)
	s.logAction(playerID, "discard_taken", map[string]interface{}{"card": card.Type.String()})
	s.message(player.Name + " reclaimed a card from the discard pile.")
	s.broadcastHand(player)
	s.finishPending()
	return nil
}

// cardsAt resolves distinct hand indices into cards without removing them.
// Assumes the session lock is held.
func (s *GameSession) cardsAt(player *models.Player, idxs []int) ([]*models.Card, error) {
	seen := make(map[int]struct{}, len(idxs))
	cards := make([]*models.Card, 0, len(idxs))
	for _, idx := range idxs {
		if _, dup := seen[idx]; dup {
			return nil, ErrInvalidAction
		}
		seen[idx] = struct{}{}
		card := player.CardAt(idx)
		if card == nil {
			return nil, ErrCardNotFound
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// removeCardsAt removes the cards at the given hand indices, highest first so
// earlier removals do not shift later ones.
// Assumes the session lock is held.
func (s *GameSession) removeCardsAt(player *models.Player, idxs []int) {
	sorted := append([]int(nil), idxs...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, idx := range sorted {
		player.RemoveCardAt(idx)
	}
}
