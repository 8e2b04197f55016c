package game

import "fmt"

// Action is a player-initiated command understood by the session.
type Action int

const (
	ActionJoin Action = iota
	ActionReady
	ActionUnready
	ActionAttack
	ActionDefend
	ActionPass
	ActionQuit
)

var actionNames = map[Action]string{
	ActionJoin:    "JOIN",
	ActionReady:   "READY",
	ActionUnready: "UNREADY",
	ActionAttack:  "ATTACK",
	ActionDefend:  "DEFEND",
	ActionPass:    "PASS",
	ActionQuit:    "QUIT",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_%d", int(a))
}

// ParseAction resolves the wire form of an action name.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// PlayerInput is the single behavioral entry into a session: who acts, what
// they do, and the cards involved where the action needs them.
type PlayerInput struct {
	PlayerID   string
	PlayerName string // used by JOIN; optional
	Action     Action
	AttackCard *Card
	DefendCard *Card
}

// ResultCode classifies the outcome of handling one input. Non-success codes
// are expected, frequent outcomes of normal play, not errors.
type ResultCode int

const (
	ResultSuccess ResultCode = iota
	ResultInvalidAction
	ResultInvalidCard
	ResultCardRequired
	ResultNotYourTurn
	ResultRoomFull
	ResultTableFull
	ResultWrongCard
	ResultGameOver
)

var resultNames = map[ResultCode]string{
	ResultSuccess:       "SUCCESS",
	ResultInvalidAction: "INVALID_ACTION",
	ResultInvalidCard:   "INVALID_CARD",
	ResultCardRequired:  "CARD_REQUIRED",
	ResultNotYourTurn:   "NOT_YOUR_TURN",
	ResultRoomFull:      "ROOM_FULL",
	ResultTableFull:     "TABLE_FULL",
	ResultWrongCard:     "WRONG_CARD",
	ResultGameOver:      "GAME_OVER",
}

func (r ResultCode) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RESULT_%d", int(r))
}

// ResponseData carries the optional structured payload of a Response. Fields
// are set only where the triggering action makes them meaningful.
type ResponseData struct {
	PlayersCount int
	AttackerID   string
	DefenderID   string
	AttackCard   *Card
	DefendCard   *Card
	TableCards   []Pair
}

// Response is the local outcome of one input when no phase change happens.
// NextPhase, when set, asks the session to perform a transition instead of
// returning the response to the caller.
type Response struct {
	Result    ResultCode
	Message   string
	NextPhase PhaseKind
	Data      *ResponseData
}

// EnterInfo describes the observable side effects of entering a phase.
type EnterInfo struct {
	Message      string
	PlayersCount int
	AttackerID   string
	DefenderID   string
	WinnerID     string   // set by GameOver when a single winner exists
	LoserIDs     []string // set by GameOver
	Draw         bool     // set by GameOver when nobody won
}

// ExitInfo describes the observable side effects of leaving a phase.
type ExitInfo struct {
	Message         string
	FirstAttackerID string // set when leaving Lobby
	FirstDefenderID string // set when leaving Lobby
	TrumpCard       *Card  // set when leaving Lobby
	AttackerID      string // set when leaving Deal after role rotation
	DefenderID      string // set when leaving Deal after role rotation
	CollectedCount  int    // cards handed to the defender on a conceded round
}

// Transition records both legs of a phase change: the exit of the old phase
// and the entry of the new one.
type Transition struct {
	Previous  PhaseKind
	New       PhaseKind
	ExitInfo  ExitInfo
	EnterInfo EnterInfo
}

// Result is what HandleInput hands back: exactly one of Response or
// Transition is non-nil.
type Result struct {
	Response   *Response
	Transition *Transition
}
