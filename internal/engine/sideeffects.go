package engine

import "time"

// SideEffect is anything a reducer wants the event loop to do that is not
// itself a state change: start or cancel a timer, re-dispatch another
// event, or notify subscribers. Reducers return side effects instead of
// performing them, keeping Reduce pure.
type SideEffect interface {
	sideEffect()
}

// StartActionTimer asks the timer subsystem to start (or restart) the
// action clock for a seat.
type StartActionTimer struct {
	Seat     int
	Duration time.Duration
	// CreatedAt lets the timer subsystem discard a stale timer that fires
	// after a newer one has already been created for the same seat.
	CreatedAt time.Time
}

func (StartActionTimer) sideEffect() {}

// StopActionTimer cancels any running action timer, e.g. because the seat
// acted before the clock expired.
type StopActionTimer struct {
	Seat int
}

func (StopActionTimer) sideEffect() {}

// StartCountdown asks the countdown subsystem to begin a client-facing
// countdown display (game start, street deal delay, new hand delay).
type StartCountdown struct {
	Kind     string
	Duration time.Duration
}

func (StartCountdown) sideEffect() {}

// ClearCountdowns cancels all countdowns of the given kind, e.g. because a
// game-start countdown is no longer relevant once the hand actually starts.
type ClearCountdowns struct {
	Kind string
}

func (ClearCountdowns) sideEffect() {}

// Redispatch asks the event loop to immediately feed another event back
// through Reduce, e.g. CloseStreet following the final call of a round.
type Redispatch struct {
	Event Event
}

func (Redispatch) sideEffect() {}

// ScheduleRedispatch asks the event loop to feed another event back through
// Reduce after a delay, e.g. EnterStreet after the street-deal delay, or
// HandEnd after a payout.
type ScheduleRedispatch struct {
	Event Event
	Delay time.Duration
}

func (ScheduleRedispatch) sideEffect() {}

// EmitSnapshot asks the event loop to publish the table's current state to
// subscribers (the translation layer's broadcast hook). Reason says why,
// e.g. "uncalled" when a bet was refunded unmatched.
type EmitSnapshot struct {
	Reason string
}

func (EmitSnapshot) sideEffect() {}

// EmitHandEnd asks the event loop to publish a hand-history record,
// typically mirrored to the event log and analytics store.
type EmitHandEnd struct {
	HandNumber int
	PotTotal   int64
}

func (EmitHandEnd) sideEffect() {}

// CheckGameStart asks the event loop to evaluate whether enough seats are
// occupied and not sitting out to start a new hand, scheduling the
// game-start countdown if so.
type CheckGameStart struct{}

func (CheckGameStart) sideEffect() {}

// EvaluateHands asks the event loop to score every in-hand seat's cards
// and fold the result into a Payout event. Kept as a side effect (rather
// than called directly from the reducer) so the reducer module stays
// decoupled from the evaluator dependency, per the component's dependency
// ordering.
type EvaluateHands struct{}

func (EvaluateHands) sideEffect() {}
