// internal/game/errors.go
package game

import "errors"

// Rule rejections surfaced to the offending client. Every one of these is
// recoverable: the command is refused and session state is untouched. The
// server layer maps them onto single-byte CommandResponse payloads.
var (
	ErrPlayerNotFound     = errors.New("player not found in session")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrInvalidAction      = errors.New("action not allowed in current state")
	ErrGameFull           = errors.New("session already has the maximum number of players")
	ErrGameAlreadyStarted = errors.New("session has already started")
	ErrGameNotStarted     = errors.New("session has not started")
	ErrCardNotFound       = errors.New("card not found in hand")
	ErrNotEnoughCards     = errors.New("not enough cards")
	ErrPlayerNotAlive     = errors.New("player has been eliminated")
	ErrMustDrawCard       = errors.New("you must draw a card to end your turn")
)
