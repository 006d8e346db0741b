package engine

func reduceAction(t Table, ev Action) (Table, []SideEffect, error) {
	delta, short, err := t.validateAction(ev.Seat, ev.Kind, ev.Amount)
	if err != nil {
		return t, nil, err
	}

	nt := t.Clone()
	s := &nt.Seats[ev.Seat]

	switch ev.Kind {
	case ActionFold:
		s.Status = SeatFolded
		s.LastAction = "fold"

	case ActionCheck:
		s.LastAction = "check"

	case ActionCall:
		applyCommitment(s, delta)
		s.LastAction = "call"

	case ActionBet:
		applyCommitment(s, delta)
		s.LastAction = "bet"
		nt.CurrentBet = s.StreetCommitted
		nt.LastAggressor = seatPtr(ev.Seat)
		nt.LastRaiseSize = delta
		nt.RaiseLocked = map[int]bool{}

	case ActionRaise:
		applyCommitment(s, delta)
		s.LastAction = "raise"
		nt.CurrentBet = s.StreetCommitted
		if short {
			nt.lockRaises(ev.Seat)
		} else if s.StreetCommitted > t.CurrentBet {
			nt.LastAggressor = seatPtr(ev.Seat)
			nt.LastRaiseSize = ev.Amount
			nt.RaiseLocked = map[int]bool{}
		}

	case ActionAllIn:
		applyCommitment(s, delta)
		s.LastAction = "allin"
		// An undercall all-in leaves the bet untouched; a short raise bumps
		// currentBet without reopening; a full raise moves the aggressor.
		if s.StreetCommitted > nt.CurrentBet {
			nt.CurrentBet = s.StreetCommitted
			if short {
				nt.lockRaises(ev.Seat)
			} else {
				nt.LastAggressor = seatPtr(ev.Seat)
				nt.LastRaiseSize = s.StreetCommitted - t.CurrentBet
				nt.RaiseLocked = map[int]bool{}
			}
		}
	}

	nt.ActedThisRound[ev.Seat] = true
	if ev.Seat == nt.BBSeat && nt.Phase == PhasePreflop {
		nt.BBHasActed = true
	}

	next := nt.nextActionableFrom(ev.Seat)
	complete, _ := nt.roundComplete(next)

	effects := []SideEffect{StopActionTimer{Seat: ev.Seat}}

	if complete {
		nt.Actor = nil
		effects = append(effects, Redispatch{Event: CloseStreet{}})
		return nt, effects, nil
	}

	nt.Actor = &next
	effects = append(effects, StartActionTimer{Seat: next})
	return nt, effects, nil
}

func reduceTimeoutAutoFold(t Table, ev TimeoutAutoFold) (Table, []SideEffect, error) {
	// Idempotent no-op if the seat is no longer the actor.
	if t.Actor == nil || *t.Actor != ev.Seat {
		return t, nil, nil
	}
	kind := ActionFold
	if t.toCall(ev.Seat) == 0 || t.bbOptionApplies(ev.Seat) {
		kind = ActionCheck
	}
	return reduceAction(t, Action{Seat: ev.Seat, Kind: kind})
}

// lockRaises marks every other active seat unable to re-raise: the short
// all-in from shortSeat was not a full raise, so it does not reopen the
// betting. The remaining seats may only call the current amount or fold.
func (t *Table) lockRaises(shortSeat int) {
	for i := range t.Seats {
		if i != shortSeat && t.Seats[i].Status == SeatActive {
			t.RaiseLocked[i] = true
		}
	}
}

func applyCommitment(s *Seat, delta int64) {
	s.Chips -= delta
	s.Committed += delta
	s.StreetCommitted += delta
	if s.Chips == 0 {
		s.Status = SeatAllIn
	}
}

func seatPtr(i int) *int {
	v := i
	return &v
}
