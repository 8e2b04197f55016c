package server

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/foolgame/durak-server-go/internal/game"
)

// Message types exchanged over the WebSocket. Client-to-server types mirror
// the actions a player can take; server-to-client types carry game events and
// state refreshes.
const (
	typePlayerConnected    = "player_connected"
	typeChangeStatus       = "change_status"
	typePlayCard           = "play_card"
	typePassTurn           = "pass_turn"
	typeQuit               = "quit"
	typeError              = "error"
	typeGameState          = "game_state"
	typeCardPlayed         = "card_played"
	typeStatusChanged      = "player_status_changed"
	typePlayerDisconnected = "player_disconnected"
)

// cardPayload is the wire form of a card: rank as a numeric string ("6".."14")
// and suit as a single letter (H, D, C, S).
type cardPayload struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

var suitLetters = map[game.Suit]string{
	game.SuitHearts:   "H",
	game.SuitDiamonds: "D",
	game.SuitClubs:    "C",
	game.SuitSpades:   "S",
}

var rankNames = map[string]game.Rank{
	"SIX":   game.RankSix,
	"SEVEN": game.RankSeven,
	"EIGHT": game.RankEight,
	"NINE":  game.RankNine,
	"TEN":   game.RankTen,
	"JACK":  game.RankJack,
	"QUEEN": game.RankQueen,
	"KING":  game.RankKing,
	"ACE":   game.RankAce,
}

func encodeCard(c game.Card) cardPayload {
	return cardPayload{
		Rank: strconv.Itoa(int(c.Rank)),
		Suit: suitLetters[c.Suit],
	}
}

// decodeCard accepts both wire forms clients have historically sent: numeric
// rank strings with suit letters, and spelled-out enum names.
func decodeCard(p *cardPayload) (*game.Card, error) {
	if p == nil {
		return nil, nil
	}

	var rank game.Rank
	if n, err := strconv.Atoi(p.Rank); err == nil {
		rank = game.Rank(n)
	} else if r, ok := rankNames[strings.ToUpper(p.Rank)]; ok {
		rank = r
	} else {
		return nil, fmt.Errorf("unknown rank %q", p.Rank)
	}
	if rank < game.RankSix || rank > game.RankAce {
		return nil, fmt.Errorf("rank %q out of range", p.Rank)
	}

	var suit game.Suit
	found := false
	for s, letter := range suitLetters {
		if letter == p.Suit || s.String() == strings.ToUpper(p.Suit) {
			suit = s
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown suit %q", p.Suit)
	}

	return &game.Card{Rank: rank, Suit: suit}, nil
}

// clientMessage is one inbound WebSocket frame.
type clientMessage struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data,omitempty"`
	AttackCard *cardPayload    `json:"attack_card,omitempty"`
	DefendCard *cardPayload    `json:"defend_card,omitempty"`
}

type statusPayload struct {
	Status string `json:"status"`
}

// toPlayerInput translates an inbound frame into an engine input. Frames that
// do not map to a player action (player_connected) return ok=false.
func toPlayerInput(msg clientMessage, playerID string) (game.PlayerInput, bool, error) {
	in := game.PlayerInput{PlayerID: playerID}

	switch msg.Type {
	case typePlayerConnected:
		return in, false, nil

	case typeChangeStatus:
		var payload statusPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return in, false, fmt.Errorf("decode status payload: %w", err)
		}
		if payload.Status == "ready" {
			in.Action = game.ActionReady
		} else {
			in.Action = game.ActionUnready
		}
		return in, true, nil

	case typePlayCard:
		attack, err := decodeCard(msg.AttackCard)
		if err != nil {
			return in, false, err
		}
		if attack == nil {
			return in, false, fmt.Errorf("play_card requires an attack_card")
		}
		defend, err := decodeCard(msg.DefendCard)
		if err != nil {
			return in, false, err
		}
		in.AttackCard = attack
		in.DefendCard = defend
		if defend != nil {
			in.Action = game.ActionDefend
		} else {
			in.Action = game.ActionAttack
		}
		return in, true, nil

	case typePassTurn:
		in.Action = game.ActionPass
		return in, true, nil

	case typeQuit:
		in.Action = game.ActionQuit
		return in, true, nil
	}
	return in, false, fmt.Errorf("unknown message type %q", msg.Type)
}

// serverMessage is one outbound WebSocket frame.
type serverMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type errorData struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func errorMessage(code, message string) serverMessage {
	return serverMessage{Type: typeError, Data: errorData{Message: message, Code: code}}
}

type pairPayload struct {
	AttackCard cardPayload  `json:"attack_card"`
	DefendCard *cardPayload `json:"defend_card,omitempty"`
}

type publicPlayerData struct {
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	CardsCount int    `json:"cards_count"`
	Status     string `json:"status"`
}

// gameStateData is the full per-player view of a session: the public snapshot
// plus the receiving player's own hand.
type gameStateData struct {
	Phase          string             `json:"phase"`
	RoomSize       int                `json:"room_size"`
	RoomPlayers    []publicPlayerData `json:"room_players"`
	Cards          []cardPayload      `json:"cards"`
	DeckSize       int                `json:"deck_size"`
	TrumpSuit      string             `json:"trump_suit"`
	TrumpCard      *cardPayload       `json:"trump_card,omitempty"`
	AttackerID     string             `json:"attacker_id"`
	DefenderID     string             `json:"defender_id"`
	TableCards     []pairPayload      `json:"table_cards"`
	AllowedActions []string           `json:"allowed_actions"`
}

func encodePairs(pairs []game.Pair) []pairPayload {
	out := make([]pairPayload, 0, len(pairs))
	for _, pair := range pairs {
		p := pairPayload{AttackCard: encodeCard(pair.Attack)}
		if pair.Defend != nil {
			defend := encodeCard(*pair.Defend)
			p.DefendCard = &defend
		}
		out = append(out, p)
	}
	return out
}

// gameStateMessage builds the game_state frame for one player from the public
// snapshot and that player's hand.
func gameStateMessage(snap *game.Snapshot, playerID string, hand []game.Card) serverMessage {
	trump := encodeCard(snap.TrumpCard)
	data := gameStateData{
		Phase:      snap.Phase.String(),
		RoomSize:   snap.PlayersLimit,
		DeckSize:   snap.DeckRemaining,
		TrumpSuit:  suitLetters[snap.TrumpSuit],
		TrumpCard:  &trump,
		AttackerID: snap.AttackerID,
		DefenderID: snap.DefenderID,
		TableCards: encodePairs(snap.TableCards),
	}
	for _, action := range snap.AllowedActions[playerID] {
		data.AllowedActions = append(data.AllowedActions, action.String())
	}
	for _, p := range snap.Players {
		data.RoomPlayers = append(data.RoomPlayers, publicPlayerData{
			PlayerID:   p.ID,
			Name:       p.Name,
			CardsCount: p.CardCount,
			Status:     p.Status.String(),
		})
	}
	for _, c := range hand {
		data.Cards = append(data.Cards, encodeCard(c))
	}
	return serverMessage{Type: typeGameState, Data: data}
}
