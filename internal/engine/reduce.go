package engine

// Reduce is the single entry point for folding an Event into a Table. It
// is a pure match on the event's tag; each case delegates to a small
// per-concern reducer. No case may mutate t or shared state.
func Reduce(t Table, ev Event) (Table, []SideEffect, error) {
	switch e := ev.(type) {
	case StartHand:
		return reduceStartHand(t, e)
	case PostBlinds:
		return reducePostBlinds(t, e)
	case DealHole:
		return reduceDealHole(t, e)
	case EnterStreet:
		return reduceEnterStreet(t, e)
	case Action:
		return reduceAction(t, e)
	case TimeoutAutoFold:
		return reduceTimeoutAutoFold(t, e)
	case CloseStreet:
		return reduceCloseStreet(t, e)
	case Showdown:
		return reduceShowdown(t, e)
	case Payout:
		return reducePayout(t, e)
	case HandEnd:
		return reduceHandEnd(t, e)
	case PlayerJoin:
		return reducePlayerJoin(t, e)
	case PlayerLeave:
		return reducePlayerLeave(t, e)
	case PlayerSitOut:
		return reducePlayerSitOut(t, e)
	case PlayerSitIn:
		return reducePlayerSitIn(t, e)
	case PlayerRebuy:
		return reducePlayerRebuy(t, e)
	default:
		return t, nil, ErrInvalidAction
	}
}

// isManagerialEvent reports whether ev belongs to the set the event loop
// treats as idempotent no-ops rather than validation failures when the
// reducer returns the table unchanged.
func isManagerialEvent(ev Event) bool {
	switch ev.(type) {
	case PlayerSitOut, PlayerSitIn, TimeoutAutoFold:
		return true
	default:
		return false
	}
}
