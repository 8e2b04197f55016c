package game

import (
	"fmt"

	"go.uber.org/zap"
)

// Player count bounds fixed at session creation.
const (
	MinPlayers = 2
	MaxPlayers = 6
)

// RoundOutcome is the defender's resolution of the current round. All
// branching on "did the defender hold or concede" reads this value.
type RoundOutcome int

const (
	OutcomeUndecided RoundOutcome = iota
	OutcomeDefended
	OutcomeCollected
)

func (o RoundOutcome) String() string {
	switch o {
	case OutcomeUndecided:
		return "UNDECIDED"
	case OutcomeDefended:
		return "DEFENDED"
	case OutcomeCollected:
		return "COLLECTED"
	default:
		return "UNKNOWN"
	}
}

// Session is the aggregate owning one game of Durak: roster, deck, table,
// current phase and the attacker/defender roles. All mutation flows through
// HandleInput; the session is not internally synchronized and callers must
// serialize inputs per session.
type Session struct {
	ID           string
	PlayersLimit int
	Players      []*Player
	Deck         *Deck
	Table        *Table

	AttackerID   string
	DefenderID   string
	RoundOutcome RoundOutcome

	phase   phase
	history []PhaseKind
	logger  *zap.Logger
}

// NewSession creates a session in the Lobby phase.
func NewSession(id string, playersLimit int, logger *zap.Logger) (*Session, error) {
	if playersLimit < MinPlayers || playersLimit > MaxPlayers {
		return nil, fmt.Errorf("players limit %d out of range [%d, %d]", playersLimit, MinPlayers, MaxPlayers)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		ID:           id,
		PlayersLimit: playersLimit,
		Deck:         NewDeck(),
		Table:        NewTable(),
		logger:       logger.With(zap.String("session_id", id)),
	}
	s.phase = phaseConstructors[PhaseLobby](s)
	s.phase.Enter()
	return s, nil
}

// Phase returns the kind of the currently active phase.
func (s *Session) Phase() PhaseKind {
	return s.phase.Kind()
}

// History returns the kinds of all phases the session has left, oldest first.
func (s *Session) History() []PhaseKind {
	return append([]PhaseKind(nil), s.history...)
}

// HandleInput forwards one player action to the active phase and performs the
// phase transition it requests, if any. Rule violations that are part of
// normal play come back inside Result; a non-nil error means the caller broke
// the engine contract (the session itself remains valid).
func (s *Session) HandleInput(in PlayerInput) (*Result, error) {
	s.normalizeInput(&in)

	s.logger.Debug("handling input",
		zap.String("player_id", in.PlayerID),
		zap.String("action", in.Action.String()),
		zap.String("phase", s.phase.Kind().String()),
	)

	resp, err := s.phase.HandleInput(in)
	if err != nil {
		s.logger.Warn("input rejected by contract check",
			zap.String("player_id", in.PlayerID),
			zap.Error(err),
		)
		return nil, err
	}
	if resp.NextPhase == PhaseNone || resp.NextPhase == s.phase.Kind() {
		return &Result{Response: &resp}, nil
	}

	tr, err := s.transitionTo(resp.NextPhase)
	if err != nil {
		return nil, err
	}
	return &Result{Transition: tr}, nil
}

// transitionTo swaps the active phase: exit the old one, enter the new one.
// Auto-advancing phases (Deal) run their synthetic input immediately, so a
// single player action can chain through several phases; the returned
// Transition describes the final leg of the chain.
func (s *Session) transitionTo(kind PhaseKind) (*Transition, error) {
	ctor, ok := phaseConstructors[kind]
	if !ok {
		return nil, fmt.Errorf("no constructor for phase %s", kind)
	}

	previous := s.phase.Kind()
	exitInfo := s.phase.Exit()
	s.history = append(s.history, previous)

	s.phase = ctor(s)
	enterInfo := s.phase.Enter()

	s.logger.Info("phase transition",
		zap.String("from", previous.String()),
		zap.String("to", kind.String()),
	)

	tr := &Transition{
		Previous:  previous,
		New:       kind,
		ExitInfo:  exitInfo,
		EnterInfo: enterInfo,
	}

	if auto, ok := s.phase.(autoAdvancer); ok {
		resp, err := s.phase.HandleInput(auto.autoInput())
		if err != nil {
			return nil, err
		}
		if resp.NextPhase != PhaseNone && resp.NextPhase != kind {
			return s.transitionTo(resp.NextPhase)
		}
	}
	return tr, nil
}

// AllowedActions reports, per player id, which actions the active phase would
// currently accept. Recomputed on every call.
func (s *Session) AllowedActions() map[string][]Action {
	return s.phase.AllowedActions()
}

// normalizeInput stamps the trump flag onto cards decoded outside the engine
// so that hand and table lookups match structurally.
func (s *Session) normalizeInput(in *PlayerInput) {
	for _, c := range []*Card{in.AttackCard, in.DefendCard} {
		if c != nil {
			c.Trump = c.Suit == s.Deck.TrumpSuit()
		}
	}
}

// playerByID finds a player in the roster, or nil.
func (s *Session) playerByID(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// playerIndex returns the seating index of a player id, or -1.
func (s *Session) playerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// nextActiveIdx returns the first seating index at or after start, searching
// cyclically, whose player has not already won. Returns -1 when every player
// is victorious. Seating order itself never changes; eliminated players are
// skipped transparently.
func (s *Session) nextActiveIdx(start int) int {
	n := len(s.Players)
	if n == 0 {
		return -1
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if s.Players[idx].Status != StatusVictorious {
			return idx
		}
	}
	return -1
}

// activeCount returns the number of players still holding out for the loss.
func (s *Session) activeCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Status != StatusVictorious {
			n++
		}
	}
	return n
}
