package game

import "go.uber.org/zap"

// dealPhase refills hands between rounds and runs the win check. It is a
// transient phase: entry deals replacement cards, then the session feeds it a
// synthetic input so the check runs without waiting for a player, and the
// phase immediately signals PlayRound or GameOver.
type dealPhase struct {
	session *Session
}

func (p *dealPhase) Kind() PhaseKind {
	return PhaseDeal
}

// Enter draws replacement cards in seating order: the attacker first, then
// the other players, the defender last, each refilled to six while the deck
// lasts.
func (p *dealPhase) Enter() EnterInfo {
	s := p.session

	start := s.playerIndex(s.AttackerID)
	if start < 0 {
		start = 0
	}
	n := len(s.Players)
	var defender *Player
	for i := 0; i < n; i++ {
		pl := s.Players[(start+i)%n]
		if pl.ID == s.DefenderID {
			defender = pl
			continue
		}
		p.fillHand(pl)
	}
	if defender != nil {
		p.fillHand(defender)
	}

	return EnterInfo{
		Message:      "hands refilled",
		PlayersCount: len(s.Players),
	}
}

// autoInput is the synthetic action the session injects right after entry.
func (p *dealPhase) autoInput() PlayerInput {
	return PlayerInput{Action: ActionReady}
}

// HandleInput evaluates the win condition and picks the next phase. Players
// go out only once the deck is exhausted; with one or zero contenders left
// the game is over, otherwise play continues.
func (p *dealPhase) HandleInput(_ PlayerInput) (Response, error) {
	s := p.session

	if s.Deck.Len() == 0 {
		for _, pl := range s.Players {
			if pl.HandSize() == 0 && pl.Status != StatusVictorious {
				pl.Status = StatusVictorious
			}
		}
		if s.activeCount() <= 1 {
			return Response{
				Result:    ResultGameOver,
				Message:   "the game is over",
				NextPhase: PhaseGameOver,
			}, nil
		}
	}
	return Response{
		Result:    ResultSuccess,
		Message:   "the game continues",
		NextPhase: PhasePlayRound,
	}, nil
}

// Exit rotates the attacker and defender for the next round. A defender who
// held becomes the attacker; one who collected is skipped. Victorious players
// are skipped in both seats.
func (p *dealPhase) Exit() ExitInfo {
	s := p.session
	n := len(s.Players)
	if n == 0 {
		return ExitInfo{Message: "dealing finished"}
	}

	defIdx := s.playerIndex(s.DefenderID)
	if defIdx < 0 {
		defIdx = 0
	}
	start := defIdx
	if s.RoundOutcome != OutcomeDefended {
		start = (defIdx + 1) % n
	}

	atkIdx := s.nextActiveIdx(start)
	if atkIdx < 0 {
		// Everyone has won; the GameOver phase sorts out the draw.
		return ExitInfo{Message: "dealing finished"}
	}
	s.AttackerID = s.Players[atkIdx].ID

	newDefIdx := s.nextActiveIdx((atkIdx + 1) % n)
	if newDefIdx >= 0 && newDefIdx != atkIdx {
		s.DefenderID = s.Players[newDefIdx].ID
	}

	return ExitInfo{
		Message:    "dealing finished",
		AttackerID: s.AttackerID,
		DefenderID: s.DefenderID,
	}
}

// AllowedActions is empty: the phase resolves itself before any player input
// can reach it.
func (p *dealPhase) AllowedActions() map[string][]Action {
	return map[string][]Action{}
}

func (p *dealPhase) fillHand(pl *Player) {
	s := p.session
	for pl.HandSize() < initialHandSize {
		card, ok := s.Deck.Draw()
		if !ok {
			return
		}
		if err := pl.AddCard(card); err != nil {
			s.logger.Error("drew a card already in a hand", zap.Error(err))
			return
		}
	}
}
