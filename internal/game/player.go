package game

import "sort"

// PlayerStatus tracks a participant's standing within the session.
type PlayerStatus int

const (
	StatusUnready PlayerStatus = iota
	StatusReady
	StatusLeft
	StatusVictorious
)

func (s PlayerStatus) String() string {
	switch s {
	case StatusUnready:
		return "UNREADY"
	case StatusReady:
		return "READY"
	case StatusLeft:
		return "LEFT"
	case StatusVictorious:
		return "VICTORIOUS"
	default:
		return "UNKNOWN"
	}
}

// Player is one participant of a session. The hand is a set keyed by card
// value, so a card can be held at most once and lookups survive a round trip
// through the wire codec.
type Player struct {
	ID     string
	Name   string
	Status PlayerStatus
	hand   map[Card]struct{}
}

// NewPlayer creates an unready player with an empty hand.
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Status: StatusUnready,
		hand:   make(map[Card]struct{}),
	}
}

// AddCard puts card into the player's hand.
func (p *Player) AddCard(card Card) error {
	if _, ok := p.hand[card]; ok {
		return newGameError(CodeCardAlreadyInHand, "player %s already holds %s", p.ID, card)
	}
	p.hand[card] = struct{}{}
	return nil
}

// RemoveCard takes card out of the player's hand.
func (p *Player) RemoveCard(card Card) error {
	if _, ok := p.hand[card]; !ok {
		return newGameError(CodeCardNotInHand, "player %s does not hold %s", p.ID, card)
	}
	delete(p.hand, card)
	return nil
}

// Has reports whether the player holds card.
func (p *Player) Has(card Card) bool {
	_, ok := p.hand[card]
	return ok
}

// HandSize returns the number of cards in hand.
func (p *Player) HandSize() int {
	return len(p.hand)
}

// Hand returns the hand in a stable suit-then-rank order.
func (p *Player) Hand() []Card {
	cards := make([]Card, 0, len(p.hand))
	for c := range p.hand {
		cards = append(cards, c)
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Suit != cards[j].Suit {
			return cards[i].Suit < cards[j].Suit
		}
		return cards[i].Rank < cards[j].Rank
	})
	return cards
}

// ClearHand drops every card the player holds.
func (p *Player) ClearHand() {
	p.hand = make(map[Card]struct{})
}

// lowestTrump returns the weakest trump card in hand, if any.
func (p *Player) lowestTrump() (Card, bool) {
	var best Card
	found := false
	for c := range p.hand {
		if !c.Trump {
			continue
		}
		if !found || c.Rank < best.Rank {
			best = c
			found = true
		}
	}
	return best, found
}
