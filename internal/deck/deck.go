// internal/deck/deck.go
package deck

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/yana-pv/exploding-kittens/internal/models"
)

// Per-type counts added to every game regardless of player count.
var actionCardCounts = map[models.CardType]int{
	models.Attack:       4,
	models.Skip:         4,
	models.Favor:        4,
	models.Shuffle:      4,
	models.SeeTheFuture: 5,
	models.Nope:         5,
	models.TacoCat:      4,
	models.BeardCat:     4,
	models.RainbowCat:   4,
	models.PotatoCat:    4,
	models.Cattermelon:  4,
}

const (
	// MinPlayers and MaxPlayers bound the per-player-count setup rule.
	MinPlayers = 2
	MaxPlayers = 5

	initialHandSize = 4
	totalDefuses    = 6
)

// Deck holds the ordered draw pile (front = next draw) and discard pile
// (back = most recent discard). It is not goroutine-safe; the owning session
// serializes access.
type Deck struct {
	DrawPile    []*models.Card
	DiscardPile []*models.Card

	rng *rand.Rand
}

// New returns an empty deck with a time-seeded random source.
func New() *Deck {
	return &Deck{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Setup builds the draw pile and starting hands for the given player count.
// Each player receives 4 cards from the shuffled non-kitten pool plus exactly
// one Defuse. Exploding kittens (playerCount-1) and the leftover defuses are
// mixed in only after dealing. With 2 players exactly 2 defuses go into the
// pile, not 6-2=4.
func Setup(playerCount int) (*Deck, [][]*models.Card, error) {
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return nil, nil, fmt.Errorf("player count %d out of range [%d, %d]", playerCount, MinPlayers, MaxPlayers)
	}

	d := New()

	var pool []*models.Card
	for t, n := range actionCardCounts {
		for i := 0; i < n; i++ {
			pool = append(pool, models.NewCard(t))
		}
	}
	d.DrawPile = pool
	d.Shuffle()

	hands := make([][]*models.Card, playerCount)
	for i := range hands {
		hand := make([]*models.Card, 0, initialHandSize+1)
		for j := 0; j < initialHandSize; j++ {
			hand = append(hand, d.mustPop())
		}
		hand = append(hand, models.NewCard(models.Defuse))
		hands[i] = hand
	}

	pileDefuses := totalDefuses - playerCount
	if playerCount == 2 {
		pileDefuses = 2
	}
	for i := 0; i < pileDefuses; i++ {
		d.DrawPile = append(d.DrawPile, models.NewCard(models.Defuse))
	}
	for i := 0; i < playerCount-1; i++ {
		d.DrawPile = append(d.DrawPile, models.NewCard(models.ExplodingKitten))
	}
	d.Shuffle()

	return d, hands, nil
}

// mustPop removes the front card of the draw pile. Only valid during setup
// when the pile is known to be non-empty.
func (d *Deck) mustPop() *models.Card {
	card := d.DrawPile[0]
	d.DrawPile = d.DrawPile[1:]
	return card
}

// Shuffle performs a uniform in-place permutation of the draw pile.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.DrawPile), func(i, j int) {
		d.DrawPile[i], d.DrawPile[j] = d.DrawPile[j], d.DrawPile[i]
	})
}

// reshuffleIfEmpty folds the discard pile back into the draw pile when the
// draw pile runs out. No-op if the draw pile still has cards or both piles
// are empty.
func (d *Deck) reshuffleIfEmpty() {
	if len(d.DrawPile) > 0 || len(d.DiscardPile) == 0 {
		return
	}
	d.DrawPile = append(d.DrawPile, d.DiscardPile...)
	d.DiscardPile = d.DiscardPile[:0]
	d.Shuffle()
}

// Draw removes and returns the front card, reshuffling the discard pile into
// the draw pile first if needed. Returns nil when both piles are empty.
func (d *Deck) Draw() *models.Card {
	d.reshuffleIfEmpty()
	if len(d.DrawPile) == 0 {
		return nil
	}
	return d.mustPop()
}

// DrawFromBottom removes and returns the last card of the draw pile, with the
// same reshuffle-on-empty fallback as Draw.
func (d *Deck) DrawFromBottom() *models.Card {
	d.reshuffleIfEmpty()
	if len(d.DrawPile) == 0 {
		return nil
	}
	idx := len(d.DrawPile) - 1
	card := d.DrawPile[idx]
	d.DrawPile = d.DrawPile[:idx]
	return card
}

// DrawAtPosition removes and returns the card at the given draw-pile index.
// Out-of-range positions fall back to a normal Draw.
func (d *Deck) DrawAtPosition(pos int) *models.Card {
	d.reshuffleIfEmpty()
	if pos < 0 || pos >= len(d.DrawPile) {
		return d.Draw()
	}
	card := d.DrawPile[pos]
	d.DrawPile = append(d.DrawPile[:pos], d.DrawPile[pos+1:]...)
	return card
}

// InsertCard places a card into the draw pile at the given position, clamped
// into [0, len(pile)]. Position 0 is the next card drawn.
func (d *Deck) InsertCard(card *models.Card, pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(d.DrawPile) {
		pos = len(d.DrawPile)
	}
	d.DrawPile = append(d.DrawPile, nil)
	copy(d.DrawPile[pos+1:], d.DrawPile[pos:])
	d.DrawPile[pos] = card
}

// InsertCardRandom places a card at a uniformly random draw-pile position.
func (d *Deck) InsertCardRandom(card *models.Card) {
	d.InsertCard(card, d.rng.Intn(len(d.DrawPile)+1))
}

// PeekTop returns up to n cards from the front of the draw pile without
// mutating it.
func (d *Deck) PeekTop(n int) []*models.Card {
	if n > len(d.DrawPile) {
		n = len(d.DrawPile)
	}
	out := make([]*models.Card, n)
	copy(out, d.DrawPile[:n])
	return out
}

// Discard appends a card to the top of the discard pile.
func (d *Deck) Discard(card *models.Card) {
	d.DiscardPile = append(d.DiscardPile, card)
}

// TopDiscard returns the most recently discarded card, or nil when empty.
func (d *Deck) TopDiscard() *models.Card {
	if len(d.DiscardPile) == 0 {
		return nil
	}
	return d.DiscardPile[len(d.DiscardPile)-1]
}

// TakeFromDiscard removes and returns the discard-pile card at the given
// index, or nil when out of range.
func (d *Deck) TakeFromDiscard(idx int) *models.Card {
	if idx < 0 || idx >= len(d.DiscardPile) {
		return nil
	}
	card := d.DiscardPile[idx]
	d.DiscardPile = append(d.DiscardPile[:idx], d.DiscardPile[idx+1:]...)
	return card
}

// Rand exposes the deck's random source for choices that must share its seed
// (random steals, random insert positions).
func (d *Deck) Rand() *rand.Rand {
	return d.rng
}
