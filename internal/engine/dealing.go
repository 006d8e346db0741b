package engine

import "pokertable/pkg/cards"

func reduceDealHole(t Table, ev DealHole) (Table, []SideEffect, error) {
	order := dealingOrder(t)
	if len(order) < 2 {
		return t, nil, ErrNotEnoughPlayers
	}

	hands, nextIdx, err := cards.DealHole(t.Deck, t.DeckIndex, len(order))
	if err != nil {
		return t, nil, err
	}

	nt := t.Clone()
	nt.DeckIndex = nextIdx
	for i, seatIdx := range order {
		h := hands[i]
		nt.Seats[seatIdx].Hand = &h
	}
	return nt, nil, nil
}

// dealingOrder returns in-hand seats starting one past the button, in
// clockwise ring order. A seat already all-in from posting a blind still
// gets hole cards.
func dealingOrder(t Table) []int {
	var order []int
	for step := 1; step <= NumSeats; step++ {
		i := (t.ButtonIndex + step) % NumSeats
		if t.Seats[i].Status.InHand() && t.Seats[i].Occupied() {
			order = append(order, i)
		}
	}
	return order
}

func reduceEnterStreet(t Table, ev EnterStreet) (Table, []SideEffect, error) {
	nt := t.Clone()

	streetMin := map[Street]int{
		StreetPreflop: 0,
		StreetFlop:    3,
		StreetTurn:    4,
		StreetRiver:   5,
	}

	alreadyDealt := len(nt.CommunityCards) >= streetMin[ev.Street]
	if ev.Street != StreetPreflop && !alreadyDealt {
		var burn cards.Card
		var dealt []cards.Card
		var err error
		switch ev.Street {
		case StreetFlop:
			var flop []cards.Card
			burn, flop, nt.DeckIndex, err = cards.DealFlop(nt.Deck, nt.DeckIndex)
			dealt = flop
			nt.BurnFlop = []cards.Card{burn}
		case StreetTurn:
			var card cards.Card
			burn, card, nt.DeckIndex, err = cards.DealTurnOrRiver(nt.Deck, nt.DeckIndex)
			dealt = []cards.Card{card}
			nt.BurnTurn = []cards.Card{burn}
		case StreetRiver:
			var card cards.Card
			burn, card, nt.DeckIndex, err = cards.DealTurnOrRiver(nt.Deck, nt.DeckIndex)
			dealt = []cards.Card{card}
			nt.BurnRiver = []cards.Card{burn}
		}
		if err != nil {
			return t, nil, err
		}
		nt.CommunityCards = append(nt.CommunityCards, dealt...)
	}

	nt.Street = ev.Street
	nt.Phase = streetPhase(ev.Street)

	if ev.Street != StreetPreflop {
		for i := range nt.Seats {
			nt.Seats[i].StreetCommitted = 0
		}
		nt.CurrentBet = 0
		nt.LastRaiseSize = nt.BigBlind
		nt.LastAggressor = nil
	}

	first := nt.firstActor(ev.Street == StreetPreflop)
	nt.ActedThisRound = map[int]bool{}
	nt.RaiseLocked = map[int]bool{}
	if first >= 0 {
		nt.RoundStartActor = &first
	} else {
		nt.RoundStartActor = nil
	}

	if first < 0 {
		nt.Actor = nil
		return nt, []SideEffect{Redispatch{Event: CloseStreet{}}}, nil
	}

	complete, _ := nt.roundComplete(first)
	if complete {
		nt.Actor = nil
		return nt, []SideEffect{Redispatch{Event: CloseStreet{}}}, nil
	}

	nt.Actor = &first
	return nt, []SideEffect{StartActionTimer{Seat: first}}, nil
}

func streetPhase(s Street) Phase {
	switch s {
	case StreetPreflop:
		return PhasePreflop
	case StreetFlop:
		return PhaseFlop
	case StreetTurn:
		return PhaseTurn
	case StreetRiver:
		return PhaseRiver
	default:
		return PhasePreflop
	}
}
