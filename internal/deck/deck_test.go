// internal/deck/deck_test.go
package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yana-pv/exploding-kittens/internal/models"
)

func countType(cards []*models.Card, t models.CardType) int {
	n := 0
	for _, c := range cards {
		if c.Type == t {
			n++
		}
	}
	return n
}

func totalCards(d *Deck, hands [][]*models.Card) int {
	n := len(d.DrawPile) + len(d.DiscardPile)
	for _, h := range hands {
		n += len(h)
	}
	return n
}

func TestSetupPlayerCountBounds(t *testing.T) {
	_, _, err := Setup(1)
	assert.Error(t, err)
	_, _, err = Setup(6)
	assert.Error(t, err)
	_, _, err = Setup(2)
	assert.NoError(t, err)
	_, _, err = Setup(5)
	assert.NoError(t, err)
}

func TestSetupDealsFourCardsPlusDefuse(t *testing.T) {
	d, hands, err := Setup(4)
	require.NoError(t, err)
	require.Len(t, hands, 4)

	for i, hand := range hands {
		assert.Len(t, hand, 5, "player %d hand size", i)
		assert.Equal(t, 1, countType(hand, models.Defuse), "player %d defuse count", i)
		assert.Zero(t, countType(hand, models.ExplodingKitten), "no kitten may be dealt")
	}
	assert.Empty(t, d.DiscardPile)
}

func TestSetupKittenCount(t *testing.T) {
	for players := 2; players <= 5; players++ {
		d, hands, err := Setup(players)
		require.NoError(t, err)
		kittens := countType(d.DrawPile, models.ExplodingKitten)
		for _, h := range hands {
			kittens += countType(h, models.ExplodingKitten)
		}
		assert.Equal(t, players-1, kittens, "%d players", players)
	}
}

func TestSetupTwoPlayerDefuseSpecialCase(t *testing.T) {
	d, _, err := Setup(2)
	require.NoError(t, err)
	assert.Equal(t, 2, countType(d.DrawPile, models.Defuse), "2-player pile gets exactly 2 defuses, not 6-2=4")

	d4, _, err := Setup(4)
	require.NoError(t, err)
	assert.Equal(t, 2, countType(d4.DrawPile, models.Defuse), "4-player pile gets 6-4=2 defuses")

	d5, _, err := Setup(5)
	require.NoError(t, err)
	assert.Equal(t, 1, countType(d5.DrawPile, models.Defuse))
}

func TestSetupFixedActionCounts(t *testing.T) {
	d, hands, err := Setup(3)
	require.NoError(t, err)

	all := append([]*models.Card{}, d.DrawPile...)
	for _, h := range hands {
		all = append(all, h...)
	}

	assert.Equal(t, 4, countType(all, models.Attack))
	assert.Equal(t, 4, countType(all, models.Skip))
	assert.Equal(t, 4, countType(all, models.Favor))
	assert.Equal(t, 4, countType(all, models.Shuffle))
	assert.Equal(t, 5, countType(all, models.SeeTheFuture))
	assert.Equal(t, 5, countType(all, models.Nope))
	for _, cat := range []models.CardType{models.TacoCat, models.BeardCat, models.RainbowCat, models.PotatoCat, models.Cattermelon} {
		assert.Equal(t, 4, countType(all, cat), cat.String())
	}
}

func TestCardConservationAcrossOperations(t *testing.T) {
	d, hands, err := Setup(4)
	require.NoError(t, err)
	initial := totalCards(d, hands)

	// Churn through a representative mix of operations.
	for i := 0; i < 200; i++ {
		c := d.Draw()
		if c == nil {
			break
		}
		switch i % 4 {
		case 0:
			d.Discard(c)
		case 1:
			d.InsertCard(c, i%7)
		case 2:
			d.InsertCardRandom(c)
		case 3:
			hands[0] = append(hands[0], c)
		}
	}
	if taken := d.TakeFromDiscard(0); taken != nil {
		d.InsertCard(taken, 3)
	}

	assert.Equal(t, initial, totalCards(d, hands), "no card may be created or destroyed")
}

func TestDrawReshufflesDiscardWhenEmpty(t *testing.T) {
	d := New()
	c1 := models.NewCard(models.Skip)
	c2 := models.NewCard(models.Attack)
	d.Discard(c1)
	d.Discard(c2)

	got := d.Draw()
	require.NotNil(t, got)
	assert.Empty(t, d.DiscardPile, "discard pile must be folded into the draw pile")
	assert.Len(t, d.DrawPile, 1)

	require.NotNil(t, d.Draw())
	assert.Nil(t, d.Draw(), "both piles empty must return nil, not loop")
}

func TestDrawFromBottom(t *testing.T) {
	d := New()
	top := models.NewCard(models.Skip)
	bottom := models.NewCard(models.Favor)
	d.DrawPile = []*models.Card{top, bottom}

	assert.Same(t, bottom, d.DrawFromBottom())
	assert.Same(t, top, d.DrawFromBottom())
	assert.Nil(t, d.DrawFromBottom())
}

func TestDrawAtPositionFallsBackWhenOutOfRange(t *testing.T) {
	d := New()
	a := models.NewCard(models.Skip)
	b := models.NewCard(models.Favor)
	c := models.NewCard(models.Nope)
	d.DrawPile = []*models.Card{a, b, c}

	assert.Same(t, b, d.DrawAtPosition(1))
	// Out of range falls back to a normal front draw.
	assert.Same(t, a, d.DrawAtPosition(99))
	assert.Same(t, c, d.DrawAtPosition(-1))
}

func TestInsertCardClampsPosition(t *testing.T) {
	d := New()
	a := models.NewCard(models.Skip)
	b := models.NewCard(models.Favor)
	d.DrawPile = []*models.Card{a, b}

	front := models.NewCard(models.Nope)
	d.InsertCard(front, -5)
	assert.Same(t, front, d.DrawPile[0])

	back := models.NewCard(models.Shuffle)
	d.InsertCard(back, 100)
	assert.Same(t, back, d.DrawPile[len(d.DrawPile)-1])

	mid := models.NewCard(models.Attack)
	d.InsertCard(mid, 2)
	assert.Same(t, mid, d.DrawPile[2])
}

func TestPeekTopDoesNotMutate(t *testing.T) {
	d := New()
	for i := 0; i < 5; i++ {
		d.DrawPile = append(d.DrawPile, models.NewCard(models.Skip))
	}
	before := append([]*models.Card{}, d.DrawPile...)

	peeked := d.PeekTop(3)
	assert.Len(t, peeked, 3)
	assert.Equal(t, before, d.DrawPile)
	assert.Same(t, before[0], peeked[0])

	assert.Len(t, d.PeekTop(10), 5, "peek caps at pile size")
}

func TestTakeFromDiscard(t *testing.T) {
	d := New()
	a := models.NewCard(models.Skip)
	b := models.NewCard(models.Favor)
	d.Discard(a)
	d.Discard(b)

	assert.Same(t, a, d.TakeFromDiscard(0))
	assert.Len(t, d.DiscardPile, 1)
	assert.Nil(t, d.TakeFromDiscard(5))
	assert.Same(t, b, d.TopDiscard())
}
