package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckIsComplete(t *testing.T) {
	d := NewDeck()
	require.Equal(t, DeckSize, d.Len())

	seen := make(map[Card]struct{}, DeckSize)
	trumps := 0
	for {
		card, ok := d.Draw()
		if !ok {
			break
		}
		_, dup := seen[card]
		require.False(t, dup, "card %s drawn twice", card)
		seen[card] = struct{}{}

		assert.Equal(t, card.Suit == d.TrumpSuit(), card.Trump,
			"trump flag must match the trump suit on %s", card)
		if card.Trump {
			trumps++
		}
	}
	assert.Len(t, seen, DeckSize)
	assert.Equal(t, len(Ranks), trumps, "exactly one suit is trump")
}

func TestDeckTrumpCardDrawnLast(t *testing.T) {
	d := NewDeck()

	var last Card
	for {
		card, ok := d.Draw()
		if !ok {
			break
		}
		last = card
	}
	assert.Equal(t, d.TrumpCard(), last, "the face-up trump sits at the bottom of the deck")

	_, ok := d.Draw()
	assert.False(t, ok, "an empty deck has nothing to draw")
}

func TestDeckRegenerateRestocks(t *testing.T) {
	d := NewDeck()
	for i := 0; i < 10; i++ {
		_, ok := d.Draw()
		require.True(t, ok)
	}
	require.Equal(t, DeckSize-10, d.Len())

	d.Regenerate()
	assert.Equal(t, DeckSize, d.Len())
	assert.True(t, d.TrumpCard().Trump)
	assert.Equal(t, d.TrumpSuit(), d.TrumpCard().Suit)
}
