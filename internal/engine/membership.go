package engine

func reducePlayerJoin(t Table, ev PlayerJoin) (Table, []SideEffect, error) {
	if ev.Seat < 0 || ev.Seat >= NumSeats {
		return t, nil, ErrUnknownSeat
	}
	if t.Seats[ev.Seat].Occupied() {
		return t, nil, ErrSeatTaken
	}
	for _, s := range t.Seats {
		if s.Occupied() && s.PlayerID == ev.PlayerID {
			return t, nil, ErrSeatTaken
		}
	}
	if ev.Chips < t.BuyInMin || ev.Chips > t.BuyInMax {
		return t, nil, ErrInvalidAction
	}

	nt := t.Clone()
	nt.Seats[ev.Seat] = Seat{
		ID:       ev.Seat,
		PlayerID: ev.PlayerID,
		Nickname: ev.Nickname,
		Chips:    ev.Chips,
		Status:   SeatEmpty,
	}
	return nt, []SideEffect{CheckGameStart{}, EmitSnapshot{Reason: "player-join"}}, nil
}

func reducePlayerLeave(t Table, ev PlayerLeave) (Table, []SideEffect, error) {
	if ev.Seat < 0 || ev.Seat >= NumSeats {
		return t, nil, ErrUnknownSeat
	}
	if !t.Seats[ev.Seat].Occupied() {
		return t, nil, ErrSeatEmpty
	}

	nt := t.Clone()
	wasActor := nt.Actor != nil && *nt.Actor == ev.Seat
	wasInHand := nt.Seats[ev.Seat].Status.InHand()
	nt.Seats[ev.Seat] = Seat{ID: ev.Seat, Status: SeatEmpty}

	effects := []SideEffect{EmitSnapshot{Reason: "player-leave"}}
	if wasInHand && isBettingPhase(nt.Phase) {
		next := nt.nextActionableFrom(ev.Seat)
		complete, _ := nt.roundComplete(next)
		if wasActor {
			effects = append(effects, StopActionTimer{Seat: ev.Seat})
		}
		if complete {
			nt.Actor = nil
			effects = append(effects, Redispatch{Event: CloseStreet{}})
		} else if wasActor {
			nt.Actor = &next
			effects = append(effects, StartActionTimer{Seat: next})
		}
	}
	return nt, effects, nil
}

// reducePlayerSitOut folds a sitting-out player out of the current hand;
// reducePlayerSitIn changes no table state. The authoritative "is sitting
// out" flag lives in the sit-out controller outside Table; the sit-out
// reducer only handles the in-hand consequence (folding a live seat) and
// is an idempotent no-op when there is nothing to fold, per the event
// loop's managerial no-op carve-out.
func reducePlayerSitOut(t Table, ev PlayerSitOut) (Table, []SideEffect, error) {
	if ev.Seat < 0 || ev.Seat >= NumSeats || !t.Seats[ev.Seat].Occupied() {
		return t, nil, nil
	}
	if t.Seats[ev.Seat].Status != SeatActive {
		return t, nil, nil
	}

	nt := t.Clone()
	wasActor := nt.Actor != nil && *nt.Actor == ev.Seat
	nt.Seats[ev.Seat].Status = SeatFolded
	nt.Seats[ev.Seat].LastAction = "sit_out"

	effects := []SideEffect{EmitSnapshot{Reason: "sit-out"}}
	if wasActor && isBettingPhase(nt.Phase) {
		next := nt.nextActionableFrom(ev.Seat)
		complete, _ := nt.roundComplete(next)
		effects = append(effects, StopActionTimer{Seat: ev.Seat})
		if complete {
			nt.Actor = nil
			effects = append(effects, Redispatch{Event: CloseStreet{}})
		} else {
			nt.Actor = &next
			effects = append(effects, StartActionTimer{Seat: next})
		}
	}
	return nt, effects, nil
}

func reducePlayerSitIn(t Table, ev PlayerSitIn) (Table, []SideEffect, error) {
	if ev.Seat < 0 || ev.Seat >= NumSeats || !t.Seats[ev.Seat].Occupied() {
		return t, nil, nil
	}
	return t, []SideEffect{EmitSnapshot{Reason: "sit-in"}, CheckGameStart{}}, nil
}

func reducePlayerRebuy(t Table, ev PlayerRebuy) (Table, []SideEffect, error) {
	if ev.Seat < 0 || ev.Seat >= NumSeats || !t.Seats[ev.Seat].Occupied() {
		return t, nil, ErrUnknownSeat
	}
	s := t.Seats[ev.Seat]
	projected := s.Chips + s.PendingRebuy + ev.Amount
	if projected > t.BuyInMax {
		return t, nil, ErrInvalidAction
	}

	nt := t.Clone()
	nt.Seats[ev.Seat].PendingRebuy += ev.Amount
	return nt, []SideEffect{EmitSnapshot{Reason: "rebuy-queued"}}, nil
}
