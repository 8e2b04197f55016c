package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// trumpify stamps the trump flag onto every card of the trump suit.
func trumpify(cards []Card, trump Suit) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		c.Trump = c.Suit == trump
		out[i] = c
	}
	return out
}

// allCardsExcept returns the full 36-card deck minus the given cards, used to
// build the undealt remainder for scripted decks.
func allCardsExcept(trump Suit, taken ...[]Card) []Card {
	used := make(map[Card]struct{})
	for _, hand := range taken {
		for _, c := range trumpify(hand, trump) {
			used[c] = struct{}{}
		}
	}
	var rest []Card
	for _, suit := range Suits {
		for _, rank := range Ranks {
			c := Card{Rank: rank, Suit: suit, Trump: suit == trump}
			if _, ok := used[c]; !ok {
				rest = append(rest, c)
			}
		}
	}
	return rest
}

// scriptedSession runs a full lobby flow for two players and swaps in a deck
// arranged so that p1 receives p1Hand and p2 receives p2Hand at the deal.
// The session is returned in the PlayRound phase.
func scriptedSession(t *testing.T, p1Hand, p2Hand []Card, trump Suit) *Session {
	t.Helper()
	require.Len(t, p1Hand, initialHandSize)
	require.Len(t, p2Hand, initialHandSize)

	s, err := NewSession("test-session", 2, zap.NewNop())
	require.NoError(t, err)

	mustRespond(t, s, PlayerInput{PlayerID: "p1", PlayerName: "Alice", Action: ActionJoin})
	mustRespond(t, s, PlayerInput{PlayerID: "p2", PlayerName: "Bob", Action: ActionJoin})
	mustRespond(t, s, PlayerInput{PlayerID: "p1", Action: ActionReady})

	// Deck draws pop from the end: the remainder sits at the bottom, p2's
	// hand above it, p1's hand on top. The face-up trump is drawn last, so
	// move one trump from the remainder to the bottom of the deck.
	rest := allCardsExcept(trump, p1Hand, p2Hand)
	for i, c := range rest {
		if c.Trump {
			rest[0], rest[i] = rest[i], rest[0]
			break
		}
	}
	cards := append(append(rest, trumpify(p2Hand, trump)...), trumpify(p1Hand, trump)...)
	s.Deck = newDeckFromCards(cards, trump, cards[0])

	res, err := s.HandleInput(PlayerInput{PlayerID: "p2", Action: ActionReady})
	require.NoError(t, err)
	require.NotNil(t, res.Transition, "the last ready must start the game")
	require.Equal(t, PhasePlayRound, res.Transition.New)
	return s
}

// midGameSession builds a session directly in the PlayRound phase with the
// given hands, roles and remaining deck. Conservation is not maintained;
// rotation and win-check tests only care about roles and hand sizes.
func midGameSession(t *testing.T, hands [][]Card, attackerIdx, defenderIdx int, deck []Card, trump Suit) *Session {
	t.Helper()

	display := Card{Rank: RankSix, Suit: trump, Trump: true}
	s := &Session{
		ID:           "test-session",
		PlayersLimit: len(hands),
		Deck:         newDeckFromCards(trumpify(deck, trump), trump, display),
		Table:        NewTable(),
		logger:       zap.NewNop(),
	}
	for i, hand := range hands {
		p := NewPlayer(fmt.Sprintf("p%d", i+1), fmt.Sprintf("Player %d", i+1))
		for _, c := range trumpify(hand, trump) {
			require.NoError(t, p.AddCard(c))
		}
		s.Players = append(s.Players, p)
	}
	s.AttackerID = s.Players[attackerIdx].ID
	s.DefenderID = s.Players[defenderIdx].ID
	s.phase = &playRoundPhase{session: s}
	return s
}

// mustRespond dispatches an input and requires a successful local response.
func mustRespond(t *testing.T, s *Session, in PlayerInput) *Response {
	t.Helper()
	res, err := s.HandleInput(in)
	require.NoError(t, err)
	require.NotNil(t, res.Response, "expected a local response, got a transition")
	require.Equal(t, ResultSuccess, res.Response.Result, "unexpected result: %s", res.Response.Message)
	return res.Response
}

// totalCards counts every card across deck, hands and table.
func totalCards(s *Session) int {
	n := s.Deck.Len() + len(s.Table.AllCards())
	for _, p := range s.Players {
		n += p.HandSize()
	}
	return n
}

// assertNoDuplicates sweeps deck, hands and table for duplicated cards.
func assertNoDuplicates(t *testing.T, s *Session) {
	t.Helper()
	seen := make(map[Card]struct{})
	record := func(c Card, where string) {
		if _, dup := seen[c]; dup {
			t.Fatalf("card %s duplicated (%s)", c, where)
		}
		seen[c] = struct{}{}
	}
	for _, c := range s.Deck.cards {
		record(c, "deck")
	}
	for _, p := range s.Players {
		for _, c := range p.Hand() {
			record(c, "hand of "+p.ID)
		}
	}
	for _, c := range s.Table.AllCards() {
		record(c, "table")
	}
}
