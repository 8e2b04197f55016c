package game

import "fmt"

// gameOverPhase announces the result and waits for the external timer to
// bounce the session back to the lobby. Any input works as that trigger; the
// phase takes no player decisions of its own.
type gameOverPhase struct {
	session  *Session
	winnerID string
	loserIDs []string
}

func (p *gameOverPhase) Kind() PhaseKind {
	return PhaseGameOver
}

// Enter determines the winner: the single player left without cards. When
// nobody qualifies the hand is a draw.
func (p *gameOverPhase) Enter() EnterInfo {
	s := p.session

	var winner *Player
	for _, pl := range s.Players {
		if pl.HandSize() == 0 && pl.Status != StatusLeft {
			winner = pl
			break
		}
	}

	info := EnterInfo{PlayersCount: len(s.Players)}
	if winner != nil {
		p.winnerID = winner.ID
		for _, pl := range s.Players {
			if pl.ID != winner.ID {
				p.loserIDs = append(p.loserIDs, pl.ID)
			}
		}
		info.Message = fmt.Sprintf("game over, %s wins", winner.Name)
	} else {
		for _, pl := range s.Players {
			p.loserIDs = append(p.loserIDs, pl.ID)
		}
		info.Message = "game over, nobody wins"
		info.Draw = true
	}
	info.WinnerID = p.winnerID
	info.LoserIDs = append([]string(nil), p.loserIDs...)
	return info
}

// HandleInput always sends the session back to the lobby. When that happens
// is the caller's business; typically a restart timer fires a no-op input.
func (p *gameOverPhase) HandleInput(_ PlayerInput) (Response, error) {
	return Response{
		Result:    ResultSuccess,
		Message:   "returning to the lobby",
		NextPhase: PhaseLobby,
	}, nil
}

// Exit wipes the finished hand: empty hands, unready statuses, clean table.
func (p *gameOverPhase) Exit() ExitInfo {
	s := p.session
	for _, pl := range s.Players {
		pl.ClearHand()
		pl.Status = StatusUnready
	}
	s.Table.Clear()
	return ExitInfo{Message: "leaving the results screen"}
}

func (p *gameOverPhase) AllowedActions() map[string][]Action {
	actions := make(map[string][]Action, len(p.session.Players))
	for _, pl := range p.session.Players {
		actions[pl.ID] = []Action{}
	}
	return actions
}
