// internal/game/actions.go
package game

import (
	"strings"

	"github.com/yana-pv/exploding-kittens/internal/models"
	"github.com/yana-pv/exploding-kittens/internal/protocol"
)

// Single-card plays. Each removes the card from the hand, applies any eager
// effect, and opens the nope window. PlayCard has already validated turn
// ownership and fetched the card.
// All of these assume the session lock is held.

func (s *GameSession) playSkip(player *models.Player, cardIdx int, card *models.Card) error {
	player.RemoveCardAt(cardIdx)
	s.turn.cardPlayed(models.Skip)
	s.logAction(player.ID, "play_skip", nil)

	s.beginAction(player, models.Skip, []*models.Card{card},
		func() {
			s.Deck.Discard(card)
			s.message(player.Name + " skipped their turn.")
		},
		func() {
			s.turn.revert(models.Skip)
			player.Hand = append(player.Hand, card)
			s.broadcastHand(player)
		})
	return nil
}

func (s *GameSession) playAttack(player *models.Player, cardIdx int, card *models.Card, target *models.Player) error {
	rec, err := s.applyAttack(player, target)
	if err != nil {
		return err
	}
	player.RemoveCardAt(cardIdx)
	s.turn.cardPlayed(models.Attack)
	s.logAction(player.ID, "play_attack", map[string]interface{}{"target": rec.targetID.String()})

	s.beginAction(player, models.Attack, []*models.Card{card},
		func() {
			s.Deck.Discard(card)
			if victim := s.playerByID(rec.targetID); victim != nil {
				s.message(player.Name + " attacked " + victim.Name + ".")
			}
		},
		func() {
			s.revertAttack(rec)
			s.turn.revert(models.Attack)
			player.Hand = append(player.Hand, card)
			s.broadcastHand(player)
		})
	return nil
}

func (s *GameSession) playShuffle(player *models.Player, cardIdx int, card *models.Card) error {
	player.RemoveCardAt(cardIdx)
	s.logAction(player.ID, "play_shuffle", nil)

	s.beginAction(player, models.Shuffle, []*models.Card{card},
		func() {
			s.Deck.Discard(card)
			s.Deck.Shuffle()
			s.message(player.Name + " shuffled the deck.")
		},
		func() {
			player.Hand = append(player.Hand, card)
			s.broadcastHand(player)
		})
	return nil
}

func (s *GameSession) playSeeTheFuture(player *models.Player, cardIdx int, card *models.Card) error {
	player.RemoveCardAt(cardIdx)
	s.logAction(player.ID, "play_see_the_future", nil)

	s.beginAction(player, models.SeeTheFuture, []*models.Card{card},
		func() {
			s.Deck.Discard(card)
			peek := s.Deck.PeekTop(3)
			names := make([]string, len(peek))
			for i, c := range peek {
				names[i] = c.Type.String()
			}
			// The peek is private; only the player sees the top cards.
			s.fireEventToPlayer(player.ID, Event{Type: EventCardPlayed, Payload: protocol.CardPlayedInfo{
				GameID:   s.ID,
				PlayerID: player.ID,
				Cards:    cardInfos(peek),
				Detail:   "top: " + strings.Join(names, ", "),
			}})
			s.message(player.Name + " looked into the future.")
		},
		func() {
			player.Hand = append(player.Hand, card)
			s.broadcastHand(player)
		})
	return nil
}

func (s *GameSession) playFavor(player *models.Player, cardIdx int, card *models.Card, target *models.Player) error {
	if target == nil || target.ID == player.ID || !target.IsAlive {
		return ErrInvalidAction
	}
	if len(target.Hand) == 0 {
		return ErrNotEnoughCards
	}
	player.RemoveCardAt(cardIdx)
	s.logAction(player.ID, "play_favor", map[string]interface{}{"target": target.ID.String()})

	s.beginAction(player, models.Favor, []*models.Card{card},
		func() {
			s.Deck.Discard(card)
			s.beginFavor(player, target)
		},
		func() {
			player.Hand = append(player.Hand, card)
			s.broadcastHand(player)
		})
	return nil
}
