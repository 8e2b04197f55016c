package game

import (
	"fmt"

	"go.uber.org/zap"
)

// playRoundPhase runs one attack/defense round. Only the current attacker and
// defender may act; everyone else observes until Deal rotates the roles.
type playRoundPhase struct {
	session *Session
}

func (p *playRoundPhase) Kind() PhaseKind {
	return PhasePlayRound
}

// Enter starts a fresh round with an empty table and an undecided defender.
func (p *playRoundPhase) Enter() EnterInfo {
	s := p.session
	s.Table.Clear()
	s.RoundOutcome = OutcomeUndecided

	return EnterInfo{
		Message:    fmt.Sprintf("player %s attacks, pick a card", s.AttackerID),
		AttackerID: s.AttackerID,
		DefenderID: s.DefenderID,
	}
}

func (p *playRoundPhase) HandleInput(in PlayerInput) (Response, error) {
	s := p.session

	if in.Action == ActionQuit {
		return p.handleQuit(in), nil
	}

	if in.PlayerID != s.AttackerID && in.PlayerID != s.DefenderID {
		return Response{Result: ResultNotYourTurn, Message: "it is not your turn"}, nil
	}

	collecting := s.RoundOutcome == OutcomeCollected
	if collecting && in.PlayerID == s.DefenderID {
		return Response{
			Result:  ResultInvalidAction,
			Message: "you already chose to take the cards, wait for the attacker to pass",
		}, nil
	}

	if in.PlayerID == s.AttackerID {
		switch in.Action {
		case ActionAttack:
			return p.handleAttack(in)
		case ActionPass:
			return p.handleAttackerPass(collecting), nil
		}
		return Response{Result: ResultInvalidAction, Message: "the attacker can only attack or pass"}, nil
	}

	// Defender from here on.
	switch in.Action {
	case ActionDefend:
		return p.handleDefend(in)
	case ActionPass:
		return p.handleDefenderPass(), nil
	}
	return Response{Result: ResultInvalidAction, Message: "the defender can only defend or pass"}, nil
}

// handleAttack validates and applies a throw by the attacker. Throw-in rank
// and slot checks come from the table; on top of those the defender must
// still be able to absorb the extra card.
func (p *playRoundPhase) handleAttack(in PlayerInput) (Response, error) {
	s := p.session

	if in.AttackCard == nil {
		return Response{Result: ResultCardRequired, Message: "pick a card to attack with"}, nil
	}
	attacker := s.playerByID(s.AttackerID)
	if attacker == nil || !attacker.Has(*in.AttackCard) {
		return Response{Result: ResultInvalidCard, Message: "you do not have that card"}, nil
	}

	defender := s.playerByID(s.DefenderID)
	if defender != nil {
		if s.RoundOutcome == OutcomeCollected {
			// The defender takes everything; do not pile on more open cards
			// than they hold.
			if s.Table.UndefendedCount() >= defender.HandSize() {
				return Response{
					Result:  ResultTableFull,
					Message: "you cannot throw in more cards than the defender holds",
				}, nil
			}
		} else if defender.HandSize() <= s.Table.UndefendedCount() {
			return Response{
				Result:  ResultTableFull,
				Message: "the defender has no cards left to beat another attack",
			}, nil
		}
	}

	if err := s.Table.Throw(*in.AttackCard); err != nil {
		switch CodeOf(err) {
		case CodeNoFreeSlots:
			return Response{Result: ResultTableFull, Message: "the table is full"}, nil
		case CodeInvalidThrowRank:
			return Response{
				Result:  ResultWrongCard,
				Message: "only ranks already on the table can be thrown in",
			}, nil
		}
		// CARD_ALREADY_ON_TABLE here means a card exists both in a hand and
		// on the table, which is a broken invariant, not a player mistake.
		return Response{}, err
	}
	if err := attacker.RemoveCard(*in.AttackCard); err != nil {
		return Response{}, err
	}

	s.logger.Debug("attack placed",
		zap.String("player_id", in.PlayerID),
		zap.String("card", in.AttackCard.String()),
	)

	return Response{
		Result:  ResultSuccess,
		Message: fmt.Sprintf("player %s attacks with %s", in.PlayerID, in.AttackCard),
		Data: &ResponseData{
			AttackerID: s.AttackerID,
			DefenderID: s.DefenderID,
			AttackCard: in.AttackCard,
			TableCards: s.Table.Pairs(),
		},
	}, nil
}

// handleAttackerPass ends the round. With a collecting defender the pass
// closes the throw-in window; otherwise it is only legal once every card on
// the table is beaten.
func (p *playRoundPhase) handleAttackerPass(collecting bool) Response {
	s := p.session

	if collecting {
		return Response{
			Result:    ResultSuccess,
			Message:   fmt.Sprintf("attack finished, defender %s takes the cards", s.DefenderID),
			NextPhase: PhaseDeal,
		}
	}
	if !s.Table.AllDefended() {
		return Response{
			Result:  ResultInvalidAction,
			Message: "you cannot pass while undefended cards remain on the table",
		}
	}
	s.RoundOutcome = OutcomeDefended
	return Response{
		Result:    ResultSuccess,
		Message:   "the defense held, cards leave the game",
		NextPhase: PhaseDeal,
	}
}

// handleDefend validates and applies a cover of one open attack card.
func (p *playRoundPhase) handleDefend(in PlayerInput) (Response, error) {
	s := p.session

	if in.AttackCard == nil || in.DefendCard == nil {
		return Response{Result: ResultCardRequired, Message: "pick the attack card and a card to beat it with"}, nil
	}
	defender := s.playerByID(s.DefenderID)
	if defender == nil || !defender.Has(*in.DefendCard) {
		return Response{Result: ResultInvalidCard, Message: "you do not have that card"}, nil
	}

	if err := s.Table.Defend(*in.AttackCard, *in.DefendCard); err != nil {
		switch CodeOf(err) {
		case CodeInvalidDefenseSuit, CodeInvalidDefenseValue:
			return Response{
				Result:  ResultInvalidCard,
				Message: fmt.Sprintf("%s cannot beat %s", in.DefendCard, in.AttackCard),
				Data: &ResponseData{
					AttackCard: in.AttackCard,
					DefendCard: in.DefendCard,
				},
			}, nil
		}
		// Defending a card that is not an open attack is a caller bug.
		return Response{}, err
	}
	if err := defender.RemoveCard(*in.DefendCard); err != nil {
		return Response{}, err
	}

	s.logger.Debug("card defended",
		zap.String("player_id", in.PlayerID),
		zap.String("attack_card", in.AttackCard.String()),
		zap.String("defend_card", in.DefendCard.String()),
	)

	return Response{
		Result:  ResultSuccess,
		Message: fmt.Sprintf("player %s defends with %s", in.PlayerID, in.DefendCard),
		Data: &ResponseData{
			DefenderID: s.DefenderID,
			DefendCard: in.DefendCard,
			TableCards: s.Table.Pairs(),
		},
	}, nil
}

// handleDefenderPass is the defender conceding: they will take the table. The
// attacker may still throw in before finishing the round with a pass.
func (p *playRoundPhase) handleDefenderPass() Response {
	s := p.session

	if s.Table.Len() == 0 {
		return Response{Result: ResultInvalidAction, Message: "there are no cards to take"}
	}
	if s.Table.AllDefended() {
		return Response{
			Result:  ResultInvalidAction,
			Message: "you already beat every card, wait for the attacker",
		}
	}
	s.RoundOutcome = OutcomeCollected
	return Response{
		Result:  ResultSuccess,
		Message: "the defender takes the cards, the attacker may throw in",
	}
}

func (p *playRoundPhase) handleQuit(in PlayerInput) Response {
	pl := p.session.playerByID(in.PlayerID)
	if pl == nil {
		return Response{Result: ResultInvalidAction, Message: fmt.Sprintf("player %s not found", in.PlayerID)}
	}
	pl.Status = StatusLeft
	return Response{
		Result:    ResultSuccess,
		Message:   fmt.Sprintf("player %s left, the game is over", in.PlayerID),
		NextPhase: PhaseGameOver,
		Data:      &ResponseData{PlayersCount: len(p.session.Players)},
	}
}

// Exit settles the round. A conceded round hands every table card to the
// defender; a defended one widens the table for the rest of the hand. The
// table is cleared either way.
func (p *playRoundPhase) Exit() ExitInfo {
	s := p.session
	info := ExitInfo{Message: "the round is over"}

	switch s.RoundOutcome {
	case OutcomeDefended:
		s.Table.SetSlots(fullSlots)
	case OutcomeCollected:
		defender := s.playerByID(s.DefenderID)
		if defender != nil {
			cards := s.Table.AllCards()
			for _, card := range cards {
				if err := defender.AddCard(card); err != nil {
					s.logger.Error("table card already in defender hand", zap.Error(err))
				}
			}
			info.CollectedCount = len(cards)
		}
	}
	s.Table.Clear()
	return info
}

func (p *playRoundPhase) AllowedActions() map[string][]Action {
	s := p.session
	actions := make(map[string][]Action, len(s.Players))
	for _, pl := range s.Players {
		actions[pl.ID] = []Action{ActionQuit}
	}

	collecting := s.RoundOutcome == OutcomeCollected
	allDefended := s.Table.AllDefended()

	if _, ok := actions[s.AttackerID]; ok {
		actions[s.AttackerID] = append(actions[s.AttackerID], ActionAttack)
		if collecting || (s.Table.Len() > 0 && allDefended) {
			actions[s.AttackerID] = append(actions[s.AttackerID], ActionPass)
		}
	}
	if _, ok := actions[s.DefenderID]; ok && !collecting && !allDefended {
		actions[s.DefenderID] = append(actions[s.DefenderID], ActionDefend, ActionPass)
	}
	return actions
}
