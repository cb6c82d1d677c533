// internal/models/player.go
package models

import "github.com/google/uuid"

// Player is one seat in a session. Players stay in the roster after
// elimination so turn order remains stable; only a lobby-phase leave removes
// them. ExtraTurns counts additional full turns owed from Attack chaining.
type Player struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Hand       []*Card   `json:"hand"`
	IsAlive    bool      `json:"isAlive"`
	ExtraTurns int       `json:"extraTurns"`
	TurnOrder  int       `json:"turnOrder"`
}

// CardAt returns the card at a hand index, or nil when out of range.
func (p *Player) CardAt(idx int) *Card {
	if idx < 0 || idx >= len(p.Hand) {
		return nil
	}
	return p.Hand[idx]
}

// RemoveCardAt removes and returns the card at a hand index, or nil when out
// of range.
func (p *Player) RemoveCardAt(idx int) *Card {
	if idx < 0 || idx >= len(p.Hand) {
		return nil
	}
	card := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return card
}

// RemoveCard removes the card with the given instance ID, or nil if absent.
func (p *Player) RemoveCard(id uuid.UUID) *Card {
	for i, c := range p.Hand {
		if c.ID == id {
			return p.RemoveCardAt(i)
		}
	}
	return nil
}

// RemoveCardOfType removes the first card of the given type from the hand and
// returns it, or nil if the player holds none.
func (p *Player) RemoveCardOfType(t CardType) *Card {
	for i, c := range p.Hand {
		if c.Type == t {
			return p.RemoveCardAt(i)
		}
	}
	return nil
}

// HasCardOfType reports whether the hand contains at least one card of the type.
func (p *Player) HasCardOfType(t CardType) bool {
	for _, c := range p.Hand {
		if c.Type == t {
			return true
		}
	}
	return false
}

// CountCardsOfType returns how many cards of the type the hand holds.
func (p *Player) CountCardsOfType(t CardType) int {
	n := 0
	for _, c := range p.Hand {
		if c.Type == t {
			n++
		}
	}
	return n
}
