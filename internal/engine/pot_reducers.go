package engine

import "time"

// handEndDelay is the literal 5000ms the Payout reducer waits before
// dispatching HandEnd, independent of the configurable NEW_HAND_DELAY.
const handEndDelay = 5 * time.Second

func reduceCloseStreet(t Table, ev CloseStreet) (Table, []SideEffect, error) {
	nt := t.Clone()

	effects := []SideEffect{ClearCountdowns{Kind: "action"}}

	if seat, amount, ok := nt.refundUncalled(); ok {
		nt.Seats[seat].Chips += amount
		nt.Seats[seat].Committed -= amount
		if nt.Seats[seat].StreetCommitted >= amount {
			nt.Seats[seat].StreetCommitted -= amount
		} else {
			nt.Seats[seat].StreetCommitted = 0
		}
		nt.CurrentBet = nt.maxInHandStreetCommitted()
		effects = append(effects, EmitSnapshot{Reason: "uncalled"})
	}

	nt.Pots = buildPots(nt.Seats)
	nt.Actor = nil

	inHand := nt.InHandSeats()
	if len(inHand) <= 1 || nt.Street == StreetRiver {
		effects = append(effects, Redispatch{Event: Showdown{}})
		return nt, effects, nil
	}

	next, ok := nextStreet(nt.Street)
	if !ok {
		effects = append(effects, Redispatch{Event: Showdown{}})
		return nt, effects, nil
	}
	if nt.StreetDealDelay > 0 {
		effects = append(effects,
			StartCountdown{Kind: "street_deal", Duration: nt.StreetDealDelay},
			ScheduleRedispatch{Event: EnterStreet{Street: next}, Delay: nt.StreetDealDelay},
		)
	} else {
		effects = append(effects, Redispatch{Event: EnterStreet{Street: next}})
	}
	return nt, effects, nil
}

func nextStreet(s Street) (Street, bool) {
	switch s {
	case StreetPreflop:
		return StreetFlop, true
	case StreetFlop:
		return StreetTurn, true
	case StreetTurn:
		return StreetRiver, true
	default:
		return StreetNone, false
	}
}

func reduceShowdown(t Table, ev Showdown) (Table, []SideEffect, error) {
	nt := t.Clone()
	nt.Phase = PhaseShowdown
	return nt, []SideEffect{EvaluateHands{}}, nil
}

func reducePayout(t Table, ev Payout) (Table, []SideEffect, error) {
	distributions := distributePots(t.Pots, t.Seats, ev.Scores)

	nt := t.Clone()
	potTotal := nt.PotTotal()
	for seat, amount := range distributions {
		nt.Seats[seat].Chips += amount
	}
	for i := range nt.Seats {
		nt.Seats[i].Committed = 0
		nt.Seats[i].StreetCommitted = 0
	}
	nt.Pots = nil
	nt.CurrentBet = 0
	nt.LastRaiseSize = 0
	nt.LastAggressor = nil
	nt.Phase = PhaseHandEnd

	return nt, []SideEffect{
		EmitHandEnd{HandNumber: nt.HandNumber, PotTotal: potTotal},
		StartCountdown{Kind: "new_hand", Duration: handEndDelay},
		ScheduleRedispatch{Event: HandEnd{}, Delay: handEndDelay},
	}, nil
}
