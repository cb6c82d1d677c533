// internal/models/card.go
package models

import "github.com/google/uuid"

// CardType enumerates every card in play.
type CardType int

const (
	ExplodingKitten CardType = iota
	Defuse
	Attack
	Skip
	Favor
	Shuffle
	SeeTheFuture
	Nope
	TacoCat
	BeardCat
	RainbowCat
	PotatoCat
	Cattermelon
)

var cardNames = map[CardType]string{
	ExplodingKitten: "ExplodingKitten",
	Defuse:          "Defuse",
	Attack:          "Attack",
	Skip:            "Skip",
	Favor:           "Favor",
	Shuffle:         "Shuffle",
	SeeTheFuture:    "SeeTheFuture",
	Nope:            "Nope",
	TacoCat:         "TacoCat",
	BeardCat:        "BeardCat",
	RainbowCat:      "RainbowCat",
	PotatoCat:       "PotatoCat",
	Cattermelon:     "Cattermelon",
}

func (t CardType) String() string {
	if name, ok := cardNames[t]; ok {
		return name
	}
	return "Unknown"
}

// ParseCardType resolves a card name back to its type. The second return is
// false for unrecognized names.
func ParseCardType(name string) (CardType, bool) {
	for t, n := range cardNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// IsCat reports whether the type is one of the five cat cards. Cats have no
// effect on their own and are only playable as combos.
func (t CardType) IsCat() bool {
	return t >= TacoCat && t <= Cattermelon
}

// iconIDs groups functionally-equivalent cards for combo matching. Each cat
// type carries its own icon; combo validation compares icons rather than
// exact types.
var iconIDs = map[CardType]int{
	ExplodingKitten: 0,
	Defuse:          1,
	Attack:          2,
	Skip:            3,
	Favor:           4,
	Shuffle:         5,
	SeeTheFuture:    6,
	Nope:            7,
	TacoCat:         8,
	BeardCat:        9,
	RainbowCat:      10,
	PotatoCat:       11,
	Cattermelon:     12,
}

// Card is an immutable card instance. ID addresses the exact instance on the
// wire; IconID is the combo-matching group for its type.
type Card struct {
	ID     uuid.UUID `json:"id"`
	Type   CardType  `json:"type"`
	IconID int       `json:"iconId"`
}

// NewCard mints a card of the given type with a fresh instance ID.
func NewCard(t CardType) *Card {
	id, _ := uuid.NewRandom()
	return &Card{ID: id, Type: t, IconID: iconIDs[t]}
}
