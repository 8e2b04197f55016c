package game

import "fmt"

// Suit identifies one of the four French suits.
type Suit int

const (
	SuitHearts Suit = iota
	SuitDiamonds
	SuitClubs
	SuitSpades
)

// Suits lists every suit in deck-building order.
var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

var suitNames = map[Suit]string{
	SuitHearts:   "HEARTS",
	SuitDiamonds: "DIAMONDS",
	SuitClubs:    "CLUBS",
	SuitSpades:   "SPADES",
}

var suitSymbols = map[Suit]string{
	SuitHearts:   "♥",
	SuitDiamonds: "♦",
	SuitClubs:    "♣",
	SuitSpades:   "♠",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SUIT_%d", int(s))
}

// Symbol returns the single-rune display form of the suit.
func (s Suit) Symbol() string {
	if sym, ok := suitSymbols[s]; ok {
		return sym
	}
	return "?"
}

// Rank is a card rank in the short 36-card deck. Numeric values follow the
// usual ordering so ranks compare directly.
type Rank int

const (
	RankSix   Rank = 6
	RankSeven Rank = 7
	RankEight Rank = 8
	RankNine  Rank = 9
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
	RankAce   Rank = 14
)

// Ranks lists every rank in ascending order.
var Ranks = []Rank{RankSix, RankSeven, RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing, RankAce}

var rankNames = map[Rank]string{
	RankSix:   "6",
	RankSeven: "7",
	RankEight: "8",
	RankNine:  "9",
	RankTen:   "10",
	RankJack:  "J",
	RankQueen: "Q",
	RankKing:  "K",
	RankAce:   "A",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RANK_%d", int(r))
}

// Card is an immutable rank/suit pair. Trump marks cards of the deck's trump
// suit; the flag is part of the value so that equality stays structural and a
// card decoded from the wire matches the same card held in a hand map.
type Card struct {
	Rank  Rank
	Suit  Suit
	Trump bool
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// Beats reports whether c wins against other when played as a defense.
// Within one suit the higher rank wins. Across suits only a trump beats a
// non-trump; two different cards of different non-trump suits never compare.
func (c Card) Beats(other Card) bool {
	if c.Suit == other.Suit {
		return c.Rank > other.Rank
	}
	return c.Trump && !other.Trump
}
