package game

import (
	"fmt"

	"go.uber.org/zap"
)

// initialHandSize is how many cards each player is dealt when a hand starts
// and the level hands are refilled to after each round.
const initialHandSize = 6

// lobbyPhase gathers players before a hand starts. The session re-enters it
// after every finished game, so entry resets all per-hand state.
type lobbyPhase struct {
	session *Session
}

func (p *lobbyPhase) Kind() PhaseKind {
	return PhaseLobby
}

// Enter resets the table, regenerates the deck with a fresh trump and clears
// the attacker/defender roles left over from a previous hand.
func (p *lobbyPhase) Enter() EnterInfo {
	s := p.session
	s.Table.Clear()
	s.Table.ResetSlots()
	s.Deck.Regenerate()
	s.AttackerID = ""
	s.DefenderID = ""
	s.RoundOutcome = OutcomeUndecided

	return EnterInfo{
		Message:      fmt.Sprintf("waiting for players, %d needed to start", s.PlayersLimit),
		PlayersCount: len(s.Players),
	}
}

func (p *lobbyPhase) HandleInput(in PlayerInput) (Response, error) {
	s := p.session

	switch in.Action {
	case ActionQuit:
		kept := s.Players[:0]
		for _, pl := range s.Players {
			if pl.ID != in.PlayerID {
				kept = append(kept, pl)
			}
		}
		s.Players = kept
		return Response{
			Result:  ResultSuccess,
			Message: fmt.Sprintf("player %s left the lobby", in.PlayerID),
			Data:    &ResponseData{PlayersCount: len(s.Players)},
		}, nil

	case ActionJoin:
		if s.playerByID(in.PlayerID) != nil {
			return Response{Result: ResultInvalidAction, Message: "you have already joined this game"}, nil
		}
		if len(s.Players) >= s.PlayersLimit {
			return Response{Result: ResultRoomFull, Message: "the room is full"}, nil
		}
		name := in.PlayerName
		if name == "" {
			name = "Player " + in.PlayerID
		}
		s.Players = append(s.Players, NewPlayer(in.PlayerID, name))
		return Response{
			Result:  ResultSuccess,
			Message: fmt.Sprintf("player %s joined, waiting for others", in.PlayerID),
			Data:    &ResponseData{PlayersCount: len(s.Players)},
		}, nil

	case ActionReady:
		pl := s.playerByID(in.PlayerID)
		if pl == nil {
			return Response{Result: ResultInvalidAction, Message: "player not found"}, nil
		}
		pl.Status = StatusReady
		if len(s.Players) == s.PlayersLimit && p.allReady() {
			return Response{
				Result:    ResultSuccess,
				Message:   "all players ready, starting the game",
				NextPhase: PhasePlayRound,
				Data:      &ResponseData{PlayersCount: len(s.Players)},
			}, nil
		}
		return Response{
			Result:  ResultSuccess,
			Message: fmt.Sprintf("player %s is ready", in.PlayerID),
			Data:    &ResponseData{PlayersCount: len(s.Players)},
		}, nil

	case ActionUnready:
		pl := s.playerByID(in.PlayerID)
		if pl == nil {
			return Response{Result: ResultInvalidAction, Message: "player not found"}, nil
		}
		pl.Status = StatusUnready
		return Response{
			Result:  ResultSuccess,
			Message: fmt.Sprintf("player %s is not ready", in.PlayerID),
			Data:    &ResponseData{PlayersCount: len(s.Players)},
		}, nil
	}

	return Response{Result: ResultInvalidAction, Message: "this action is not allowed in the lobby"}, nil
}

// Exit starts the hand: deal six cards to everyone, pick the first attacker
// by the lowest trump in hand, seat the defender next to them and reset the
// ready flags so the next lobby starts clean.
func (p *lobbyPhase) Exit() ExitInfo {
	s := p.session

	for _, pl := range s.Players {
		for i := 0; i < initialHandSize; i++ {
			card, ok := s.Deck.Draw()
			if !ok {
				break
			}
			if err := pl.AddCard(card); err != nil {
				s.logger.Error("dealt a duplicate card", zap.Error(err))
			}
		}
	}

	s.AttackerID = p.firstAttacker()
	s.DefenderID = p.firstDefender()

	for _, pl := range s.Players {
		pl.Status = StatusUnready
	}

	trump := s.Deck.TrumpCard()
	return ExitInfo{
		Message:         "the game begins",
		FirstAttackerID: s.AttackerID,
		FirstDefenderID: s.DefenderID,
		TrumpCard:       &trump,
	}
}

func (p *lobbyPhase) AllowedActions() map[string][]Action {
	actions := make(map[string][]Action, len(p.session.Players))
	for _, pl := range p.session.Players {
		list := []Action{ActionQuit}
		if pl.Status == StatusReady {
			list = append(list, ActionUnready)
		} else {
			list = append(list, ActionReady)
		}
		actions[pl.ID] = list
	}
	return actions
}

func (p *lobbyPhase) allReady() bool {
	for _, pl := range p.session.Players {
		if pl.Status != StatusReady {
			return false
		}
	}
	return true
}

// firstAttacker is the player holding the lowest trump; when nobody holds a
// trump, the first player in seating order opens.
func (p *lobbyPhase) firstAttacker() string {
	s := p.session
	bestID := ""
	var bestRank Rank
	for _, pl := range s.Players {
		if card, ok := pl.lowestTrump(); ok {
			if bestID == "" || card.Rank < bestRank {
				bestID = pl.ID
				bestRank = card.Rank
			}
		}
	}
	if bestID == "" && len(s.Players) > 0 {
		bestID = s.Players[0].ID
	}
	return bestID
}

// firstDefender sits immediately after the attacker in seating order.
func (p *lobbyPhase) firstDefender() string {
	s := p.session
	if len(s.Players) < MinPlayers {
		return ""
	}
	idx := s.playerIndex(s.AttackerID)
	if idx < 0 {
		idx = 0
	}
	return s.Players[(idx+1)%len(s.Players)].ID
}
