package engine

// isActionableIndex reports whether the seat at index i can still act: occupied
// and status active.
func (t *Table) isActionableIndex(i int) bool {
	if i < 0 || i >= NumSeats {
		return false
	}
	return isActionable(t.Seats[i])
}

// nextActionableFrom searches clockwise starting one seat after i,
// wrapping modulo NumSeats, and returns the first actionable seat found.
// Returns -1 if none exists within one full lap.
func (t *Table) nextActionableFrom(i int) int {
	for step := 1; step <= NumSeats; step++ {
		j := (i + step) % NumSeats
		if t.isActionableIndex(j) {
			return j
		}
	}
	return -1
}

// nextOccupiedFrom searches clockwise for the next occupied seat
// (regardless of active/folded/all-in), used for button advancement.
func (t *Table) nextOccupiedFrom(i int) int {
	for step := 1; step <= NumSeats; step++ {
		j := (i + step) % NumSeats
		if t.Seats[j].Occupied() {
			return j
		}
	}
	return -1
}

// nextOccupiedWithChipsFrom searches clockwise for the next occupied seat
// that still has chips, used to advance the button past broke players.
func (t *Table) nextOccupiedWithChipsFrom(i int) int {
	for step := 1; step <= NumSeats; step++ {
		j := (i + step) % NumSeats
		if t.Seats[j].Occupied() && t.Seats[j].Chips > 0 {
			return j
		}
	}
	return -1
}

// firstActor computes the first actor for the current street, per the
// heads-up/multi-way and preflop/postflop rules.
func (t *Table) firstActor(isPreflop bool) int {
	inHand := t.InHandSeats()
	headsUp := len(inHand) == 2

	if headsUp {
		if isPreflop {
			if t.isActionableIndex(t.ButtonIndex) {
				return t.ButtonIndex
			}
			return t.nextActionableFrom(t.ButtonIndex)
		}
		bb := t.nextOccupiedFrom(t.ButtonIndex)
		if t.isActionableIndex(bb) {
			return bb
		}
		return t.nextActionableFrom(t.ButtonIndex)
	}

	if isPreflop {
		return t.nextActionableFrom(t.BBSeat)
	}
	return t.nextActionableFrom(t.ButtonIndex)
}

// bbOptionApplies reports whether the big blind's preflop option precludes
// round completion with proposedNext as the next actor.
func (t *Table) bbOptionApplies(proposedNext int) bool {
	return t.Phase == PhasePreflop &&
		!t.BBHasActed &&
		t.CurrentBet == t.BigBlind &&
		proposedNext == t.BBSeat
}

// roundComplete evaluates the pure round-completion predicate described in
// the ring & rules component, given the actor who would act next.
func (t *Table) roundComplete(proposedNext int) (bool, string) {
	inHand := t.InHandSeats()
	if len(inHand) <= 1 {
		return true, "fold-to-one"
	}

	actionable := t.ActionableSeats()
	if len(actionable) == 0 {
		return true, "all-players-allin"
	}

	if t.bbOptionApplies(proposedNext) {
		return false, ""
	}

	// A single seat with chips behind has nobody left to bet against once
	// it has matched the current bet: any wager could only come back as an
	// uncalled refund. The preflop BB option is the one exception, handled
	// above.
	if len(actionable) == 1 && t.Seats[actionable[0]].StreetCommitted == t.CurrentBet {
		return true, "all-players-allin"
	}

	for _, i := range actionable {
		if !t.ActedThisRound[i] {
			return false, ""
		}
	}

	// Every actionable seat has acted; the round closes once every in-hand
	// seat has either matched the current bet or is all-in. When an
	// aggressor exists this coincides with the ring returning to them
	// (an unmatched seat still owes a call); when the aggressor is now
	// all-in the ring can never reach them again, and the matched check
	// is what closes the cycle.
	for _, i := range inHand {
		s := t.Seats[i]
		if s.StreetCommitted != t.CurrentBet && s.Status != SeatAllIn {
			return false, ""
		}
	}
	if t.LastAggressor != nil {
		return true, "aggressor-cycle"
	}
	return true, "checks-cycle"
}
