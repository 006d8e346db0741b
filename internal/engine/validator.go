package engine

// toCall returns the amount a seat must add to match currentBet.
func (t *Table) toCall(seat int) int64 {
	d := t.CurrentBet - t.Seats[seat].StreetCommitted
	if d < 0 {
		return 0
	}
	return d
}

// maxInHandStreetCommitted recomputes currentBet's defining quantity: the
// highest street commitment among seats still contesting the hand.
func (t *Table) maxInHandStreetCommitted() int64 {
	var max int64
	for _, s := range t.Seats {
		if s.Status.InHand() && s.StreetCommitted > max {
			max = s.StreetCommitted
		}
	}
	return max
}

func isBettingPhase(p Phase) bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	default:
		return false
	}
}

// preconditions checks the action-agnostic legality gate: the seat exists,
// is active, is the current actor, and the table is in a betting phase.
func (t *Table) preconditions(seat int) error {
	if seat < 0 || seat >= NumSeats {
		return ErrUnknownSeat
	}
	if !isBettingPhase(t.Phase) {
		return ErrWrongPhase
	}
	if t.Seats[seat].Status != SeatActive || !t.Seats[seat].Occupied() {
		return ErrInvalidAction
	}
	if t.Actor == nil || *t.Actor != seat {
		return ErrNotYourTurn
	}
	return nil
}

// validateAction checks one action's legality and returns the chip delta
// to commit this street and whether it constitutes a short all-in (an
// all-in, or an ALLIN-equivalent raise, whose increment over currentBet is
// smaller than lastRaiseSize and therefore does not reopen betting).
func (t *Table) validateAction(seat int, kind ActionKind, amount int64) (delta int64, short bool, err error) {
	if err := t.preconditions(seat); err != nil {
		return 0, false, err
	}
	if amount < 0 {
		return 0, false, ErrInvalidAction
	}

	s := t.Seats[seat]
	toCall := t.toCall(seat)

	switch kind {
	case ActionFold:
		return 0, false, nil

	case ActionCheck:
		if toCall != 0 && !t.bbOptionApplies(seat) {
			return 0, false, ErrInvalidAction
		}
		return 0, false, nil

	case ActionCall:
		if toCall <= 0 {
			return 0, false, ErrInvalidAction
		}
		d := toCall
		if d > s.Chips {
			d = s.Chips
		}
		short = t.isShortCommitment(s, d)
		return d, short, nil

	case ActionBet:
		if t.CurrentBet != 0 {
			return 0, false, ErrInvalidAction
		}
		if amount > s.Chips {
			return 0, false, ErrInsufficientChips
		}
		if amount < t.BigBlind && amount != s.Chips {
			return 0, false, ErrBetTooSmall
		}
		return amount, false, nil

	case ActionRaise:
		if t.CurrentBet == 0 {
			return 0, false, ErrInvalidAction
		}
		if t.RaiseLocked[seat] {
			return 0, false, ErrInvalidAction
		}
		total := toCall + amount
		if total > s.Chips {
			return 0, false, ErrInsufficientChips
		}
		if amount < t.LastRaiseSize && total != s.Chips {
			return 0, false, ErrBetTooSmall
		}
		short = t.isShortCommitment(s, total)
		return total, short, nil

	case ActionAllIn:
		if s.Chips <= 0 {
			return 0, false, ErrInsufficientChips
		}
		d := s.Chips
		short = t.isShortCommitment(s, d)
		return d, short, nil

	default:
		return 0, false, ErrInvalidAction
	}
}

// isShortCommitment reports whether committing delta more from seat s is
// an all-in that raises currentBet by less than lastRaiseSize — too small
// to count as a full raise, so it must not reopen betting. An all-in that
// never reaches currentBet is an undercall, not a short raise: it leaves
// the bet (and everyone's right to raise) untouched.
func (t *Table) isShortCommitment(s Seat, delta int64) bool {
	if delta < s.Chips {
		return false // not actually an all-in
	}
	newStreetCommitted := s.StreetCommitted + delta
	increment := newStreetCommitted - t.CurrentBet
	return t.CurrentBet > 0 && increment > 0 && increment < t.LastRaiseSize
}

// AvailableActions exposes the available-action set for UI help text.
func (t *Table) AvailableActions(seat int) []ActionKind {
	return t.availableActions(seat)
}

// ToCall exposes the amount a seat must add to match the current bet.
func (t *Table) ToCall(seat int) int64 {
	if seat < 0 || seat >= NumSeats {
		return 0
	}
	return t.toCall(seat)
}

// SeatOf returns the seat index occupied by playerID, or -1.
func (t *Table) SeatOf(playerID string) int {
	if playerID == "" {
		return -1
	}
	for i, s := range t.Seats {
		if s.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// availableActions returns the set of actions a seat may legally take
// right now, for UI help text. It mirrors validateAction's gates without
// requiring a concrete amount.
func (t *Table) availableActions(seat int) []ActionKind {
	if err := t.preconditions(seat); err != nil {
		return nil
	}
	s := t.Seats[seat]
	toCall := t.toCall(seat)

	actions := []ActionKind{ActionFold}

	if toCall == 0 || t.bbOptionApplies(seat) {
		actions = append(actions, ActionCheck)
	}
	if toCall > 0 && s.Chips > 0 {
		actions = append(actions, ActionCall)
	}
	if t.CurrentBet == 0 && s.Chips >= t.BigBlind {
		actions = append(actions, ActionBet)
	}
	if t.CurrentBet > 0 && s.Chips > toCall+t.LastRaiseSize && !t.RaiseLocked[seat] {
		actions = append(actions, ActionRaise)
	}
	if s.Chips > 0 {
		actions = append(actions, ActionAllIn)
	}
	return actions
}
