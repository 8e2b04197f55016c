package game

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable machine-readable identifier carried by every
// GameError. Callers translate codes into client-facing messages; the codes
// themselves never change between releases.
type ErrorCode string

const (
	CodeCardAlreadyOnTable  ErrorCode = "CARD_ALREADY_ON_TABLE"
	CodeCardNotOnTable      ErrorCode = "CARD_NOT_ON_TABLE"
	CodeInvalidDefenseSuit  ErrorCode = "INVALID_DEFENSE_SUIT"
	CodeInvalidDefenseValue ErrorCode = "INVALID_DEFENSE_VALUE"
	CodeInvalidThrowRank    ErrorCode = "INVALID_THROW_RANK"
	CodeNoFreeSlots         ErrorCode = "NO_FREE_SLOTS"
	CodeWrongTurnAction     ErrorCode = "WRONG_TURN_ACTION"
	CodeCardAlreadyInHand   ErrorCode = "CARD_ALREADY_IN_HAND"
	CodeCardNotInHand       ErrorCode = "CARD_NOT_IN_HAND"
)

// GameError is the root of the engine's typed error channel. Rule checks that
// represent broken caller contracts surface as *GameError out of HandleInput;
// the session itself stays valid and resumable after any of them.
type GameError struct {
	Code    ErrorCode
	Message string
}

func (e *GameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newGameError(code ErrorCode, format string, args ...any) *GameError {
	return &GameError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or "" when err is not a GameError.
func CodeOf(err error) ErrorCode {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}
