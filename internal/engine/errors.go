package engine

import "errors"

var (
	ErrTableFull         = errors.New("engine: table full")
	ErrSeatTaken         = errors.New("engine: seat already occupied")
	ErrSeatEmpty         = errors.New("engine: seat is empty")
	ErrNotYourTurn       = errors.New("engine: not this seat's turn to act")
	ErrHandInProgress    = errors.New("engine: hand already in progress")
	ErrNotEnoughPlayers  = errors.New("engine: not enough players to start a hand")
	ErrInvalidAction     = errors.New("engine: invalid action for current state")
	ErrInsufficientChips = errors.New("engine: insufficient chips for action")
	ErrBetTooSmall       = errors.New("engine: bet or raise below minimum")
	ErrWrongPhase        = errors.New("engine: event not valid in current phase")
	ErrDeckExhausted     = errors.New("engine: deck exhausted")
	ErrUnknownSeat       = errors.New("engine: seat index out of range")
	ErrPlayerNotSeated   = errors.New("engine: player is not seated at this table")
)
