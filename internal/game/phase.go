package game

import "fmt"

// PhaseKind is the closed set of session phases. Transitions name their
// target by kind and the session instantiates it through phaseConstructors;
// there is no reflective phase lookup.
type PhaseKind int

const (
	PhaseNone PhaseKind = iota
	PhaseLobby
	PhasePlayRound
	PhaseDeal
	PhaseGameOver
)

var phaseNames = map[PhaseKind]string{
	PhaseNone:      "NONE",
	PhaseLobby:     "LOBBY",
	PhasePlayRound: "PLAY_ROUND",
	PhaseDeal:      "DEAL",
	PhaseGameOver:  "GAME_OVER",
}

func (k PhaseKind) String() string {
	if name, ok := phaseNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(k))
}

// phase is the behavior each session phase implements. Enter and Exit run the
// phase's entry and exit side effects; HandleInput applies one player action.
type phase interface {
	Kind() PhaseKind
	Enter() EnterInfo
	HandleInput(in PlayerInput) (Response, error)
	Exit() ExitInfo
	AllowedActions() map[string][]Action
}

// autoAdvancer is implemented by phases that drive themselves: right after
// entry the session feeds them the returned synthetic input. Deal uses this
// to run the win check without waiting for a player.
type autoAdvancer interface {
	autoInput() PlayerInput
}

var phaseConstructors = map[PhaseKind]func(*Session) phase{
	PhaseLobby:     func(s *Session) phase { return &lobbyPhase{session: s} },
	PhasePlayRound: func(s *Session) phase { return &playRoundPhase{session: s} },
	PhaseDeal:      func(s *Session) phase { return &dealPhase{session: s} },
	PhaseGameOver:  func(s *Session) phase { return &gameOverPhase{session: s} },
}
