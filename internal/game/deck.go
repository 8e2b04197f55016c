package game

import "math/rand/v2"

// DeckSize is the number of cards in a full short deck.
const DeckSize = 36

// Deck owns the undealt portion of a shuffled 36-card deck together with the
// trump suit chosen for the current hand. The face-up trump card sits at the
// bottom of the deck and is drawn last, as on a real table.
type Deck struct {
	cards     []Card
	trumpSuit Suit
	trumpCard Card
}

// NewDeck creates a full shuffled deck with a randomly chosen trump suit.
func NewDeck() *Deck {
	d := &Deck{}
	d.Regenerate()
	return d
}

// newDeckFromCards builds a deck with a fixed card order for tests. The last
// element of cards is drawn first.
func newDeckFromCards(cards []Card, trumpSuit Suit, trumpCard Card) *Deck {
	return &Deck{
		cards:     append([]Card(nil), cards...),
		trumpSuit: trumpSuit,
		trumpCard: trumpCard,
	}
}

// Regenerate rebuilds the deck from scratch: new trump suit, fresh 36 cards,
// shuffled, with the face-up trump card seeded at the bottom.
func (d *Deck) Regenerate() {
	d.trumpSuit = Suits[rand.IntN(len(Suits))]

	d.cards = d.cards[:0]
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards = append(d.cards, Card{Rank: rank, Suit: suit, Trump: suit == d.trumpSuit})
		}
	}

	// Pick the face-up trump, shuffle the rest and put it underneath.
	trumpIdx := -1
	for i, c := range d.cards {
		if c.Trump {
			trumpIdx = i
			break
		}
	}
	trumpIdx += rand.IntN(len(Ranks))
	d.trumpCard = d.cards[trumpIdx]
	d.cards = append(d.cards[:trumpIdx], d.cards[trumpIdx+1:]...)

	rand.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	d.cards = append([]Card{d.trumpCard}, d.cards...)
}

// Draw removes and returns the top card. ok is false once the deck is empty.
func (d *Deck) Draw() (card Card, ok bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card = d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

// Len reports how many cards remain undealt.
func (d *Deck) Len() int {
	return len(d.cards)
}

// TrumpSuit returns the trump suit of the current hand.
func (d *Deck) TrumpSuit() Suit {
	return d.trumpSuit
}

// TrumpCard returns the face-up card that fixed the trump suit.
func (d *Deck) TrumpCard() Card {
	return d.trumpCard
}
