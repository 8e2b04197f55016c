package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// sessionState is the complete serialized form of a session: everything
// needed to resume play after a restart, including the deck order.
type sessionState struct {
	ID           string        `json:"id"`
	PlayersLimit int           `json:"players_limit"`
	Phase        PhaseKind     `json:"phase"`
	AttackerID   string        `json:"attacker_id"`
	DefenderID   string        `json:"defender_id"`
	RoundOutcome RoundOutcome  `json:"round_outcome"`
	TrumpSuit    Suit          `json:"trump_suit"`
	TrumpCard    Card          `json:"trump_card"`
	DeckCards    []Card        `json:"deck_cards"` // bottom first, drawn from the end
	TableSlots   int           `json:"table_slots"`
	TablePairs   []Pair        `json:"table_pairs"`
	Players      []playerState `json:"players"`
	History      []PhaseKind   `json:"history"`
}

type playerState struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Status PlayerStatus `json:"status"`
	Hand   []Card       `json:"hand"`
}

// MarshalState serializes the full session, deck order included. The result
// is for trusted storage only: it contains every player's hand.
func (s *Session) MarshalState() ([]byte, error) {
	state := sessionState{
		ID:           s.ID,
		PlayersLimit: s.PlayersLimit,
		Phase:        s.phase.Kind(),
		AttackerID:   s.AttackerID,
		DefenderID:   s.DefenderID,
		RoundOutcome: s.RoundOutcome,
		TrumpSuit:    s.Deck.TrumpSuit(),
		TrumpCard:    s.Deck.TrumpCard(),
		DeckCards:    append([]Card(nil), s.Deck.cards...),
		TableSlots:   s.Table.Slots(),
		TablePairs:   s.Table.Pairs(),
		History:      s.History(),
	}
	for _, pl := range s.Players {
		state.Players = append(state.Players, playerState{
			ID:     pl.ID,
			Name:   pl.Name,
			Status: pl.Status,
			Hand:   pl.Hand(),
		})
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal session state: %w", err)
	}
	return data, nil
}

// RestoreSession rebuilds a session from serialized state. The restored phase
// is not re-entered: entry side effects already happened before the save.
func RestoreSession(data []byte, logger *zap.Logger) (*Session, error) {
	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	if state.PlayersLimit < MinPlayers || state.PlayersLimit > MaxPlayers {
		return nil, fmt.Errorf("players limit %d out of range [%d, %d]", state.PlayersLimit, MinPlayers, MaxPlayers)
	}
	ctor, ok := phaseConstructors[state.Phase]
	if !ok {
		return nil, fmt.Errorf("unknown phase %d in session state", state.Phase)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		ID:           state.ID,
		PlayersLimit: state.PlayersLimit,
		Deck:         newDeckFromCards(state.DeckCards, state.TrumpSuit, state.TrumpCard),
		Table:        NewTable(),
		AttackerID:   state.AttackerID,
		DefenderID:   state.DefenderID,
		RoundOutcome: state.RoundOutcome,
		history:      append([]PhaseKind(nil), state.History...),
		logger:       logger.With(zap.String("session_id", state.ID)),
	}
	s.Table.SetSlots(state.TableSlots)
	for _, pair := range state.TablePairs {
		if err := s.Table.Throw(pair.Attack); err != nil {
			return nil, fmt.Errorf("restore table: %w", err)
		}
		if pair.Defend != nil {
			if err := s.Table.Defend(pair.Attack, *pair.Defend); err != nil {
				return nil, fmt.Errorf("restore table: %w", err)
			}
		}
	}
	for _, ps := range state.Players {
		pl := NewPlayer(ps.ID, ps.Name)
		pl.Status = ps.Status
		for _, c := range ps.Hand {
			if err := pl.AddCard(c); err != nil {
				return nil, fmt.Errorf("restore hand of %s: %w", ps.ID, err)
			}
		}
		s.Players = append(s.Players, pl)
	}
	s.phase = ctor(s)
	return s, nil
}

// StateChecksum computes a deterministic digest of the session state, used to
// detect divergence between a saved session and its restored copy.
func (s *Session) StateChecksum() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "SESSION:%s|%d|%s|%s|%s|%s\n",
		s.ID, s.PlayersLimit, s.phase.Kind(), s.AttackerID, s.DefenderID, s.RoundOutcome)
	fmt.Fprintf(&buf, "TRUMP:%s|%s\n", s.Deck.TrumpSuit(), s.Deck.TrumpCard())

	// Deck order matters: the same cards in a different order are a
	// different game.
	deck := make([]string, 0, s.Deck.Len())
	for _, c := range s.Deck.cards {
		deck = append(deck, c.String())
	}
	fmt.Fprintf(&buf, "DECK:%s\n", strings.Join(deck, ","))

	for _, pl := range s.Players {
		hand := make([]string, 0, pl.HandSize())
		for _, c := range pl.Hand() {
			hand = append(hand, c.String())
		}
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%s|%s\n", pl.ID, pl.Name, pl.Status, strings.Join(hand, ","))
	}

	fmt.Fprintf(&buf, "TABLE:%d|", s.Table.Slots())
	for _, pair := range s.Table.Pairs() {
		if pair.Defend != nil {
			fmt.Fprintf(&buf, "%s>%s;", pair.Attack, pair.Defend)
		} else {
			fmt.Fprintf(&buf, "%s>;", pair.Attack)
		}
	}
	buf.WriteString("\n")

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
