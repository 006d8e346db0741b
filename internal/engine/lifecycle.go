package engine

import (
	"time"

	"pokertable/pkg/cards"
)

func reduceStartHand(t Table, ev StartHand) (Table, []SideEffect, error) {
	if t.Phase != PhaseWaiting {
		return t, nil, ErrHandInProgress
	}

	sittingOut := toSeatSet(ev.SittingOut)
	var eligible []int
	for i, s := range t.Seats {
		if s.Occupied() && s.Chips > 0 && !sittingOut[i] {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) < 2 {
		return t, nil, ErrNotEnoughPlayers
	}

	nt := t.Clone()
	nt.HandStartedAt = time.UnixMilli(ev.Timestamp)

	if t.HandNumber == 0 {
		nt.ButtonIndex = eligible[int(ev.Timestamp%int64(len(eligible)))]
	}
	nt.HandNumber++

	deck := cards.Shuffle(ev.Seed)
	nt.Deck = deck
	nt.DeckIndex = 0
	nt.DeckSeed = ev.Seed

	nt.CommunityCards = nil
	nt.BurnFlop = nil
	nt.BurnTurn = nil
	nt.BurnRiver = nil
	nt.Pots = nil
	nt.CurrentBet = 0
	nt.LastRaiseSize = nt.BigBlind
	nt.LastAggressor = nil
	nt.Actor = nil
	nt.BBSeat = -1
	nt.BBHasActed = false
	nt.ActedThisRound = map[int]bool{}
	nt.RaiseLocked = map[int]bool{}
	nt.RoundStartActor = nil
	nt.Phase = PhaseDeal
	nt.Street = StreetNone

	for i := range nt.Seats {
		s := &nt.Seats[i]
		if !s.Occupied() {
			continue
		}
		if s.PendingRebuy > 0 {
			s.Chips += s.PendingRebuy
			s.PendingRebuy = 0
		}
		s.Committed = 0
		s.StreetCommitted = 0
		s.Hand = nil
		s.LastAction = ""
		if s.Chips > 0 && !sittingOut[i] {
			s.Status = SeatActive
		} else {
			s.Status = SeatEmpty
		}
	}

	return nt, []SideEffect{Redispatch{Event: PostBlinds{}}}, nil
}

func reduceHandEnd(t Table, ev HandEnd) (Table, []SideEffect, error) {
	nt := t.Clone()

	for i := range nt.Seats {
		s := &nt.Seats[i]
		if s.Occupied() && s.Chips == 0 {
			nt.Seats[i] = Seat{ID: i, Status: SeatEmpty}
		}
	}

	if next := nt.nextOccupiedWithChipsFrom(nt.ButtonIndex); next >= 0 {
		nt.ButtonIndex = next
	}

	nt.CommunityCards = nil
	nt.BurnFlop = nil
	nt.BurnTurn = nil
	nt.BurnRiver = nil
	nt.Pots = nil
	nt.Deck = nil
	nt.DeckIndex = 0
	nt.DeckSeed = ""
	nt.CurrentBet = 0
	nt.LastRaiseSize = 0
	nt.LastAggressor = nil
	nt.Actor = nil
	nt.BBSeat = -1
	nt.BBHasActed = false
	nt.ActedThisRound = map[int]bool{}
	nt.RaiseLocked = map[int]bool{}
	nt.RoundStartActor = nil
	nt.Phase = PhaseWaiting
	nt.Street = StreetNone

	return nt, []SideEffect{CheckGameStart{}}, nil
}

func reducePostBlinds(t Table, ev PostBlinds) (Table, []SideEffect, error) {
	activeCount := 0
	for _, s := range t.Seats {
		if s.Status == SeatActive {
			activeCount++
		}
	}
	if activeCount < 2 {
		return t, nil, ErrNotEnoughPlayers
	}

	nt := t.Clone()

	if !nt.isActionableIndex(nt.ButtonIndex) {
		if repaired := nt.nextActionableFrom(nt.ButtonIndex); repaired >= 0 {
			nt.ButtonIndex = repaired
		}
	}

	var sbSeat, bbSeat int
	if activeCount == 2 {
		sbSeat = nt.ButtonIndex
		if !nt.isActionableIndex(sbSeat) {
			sbSeat = nt.nextActionableFrom(nt.ButtonIndex)
		}
		bbSeat = nt.nextActionableFrom(sbSeat)
	} else {
		sbSeat = nt.nextActionableFrom(nt.ButtonIndex)
		bbSeat = nt.nextActionableFrom(sbSeat)
	}

	postBlind(&nt.Seats[sbSeat], nt.SmallBlind)
	postBlind(&nt.Seats[bbSeat], nt.BigBlind)

	if nt.Ante > 0 {
		for i := range nt.Seats {
			if nt.Seats[i].Status == SeatActive || nt.Seats[i].Status == SeatAllIn {
				postAnte(&nt.Seats[i], nt.Ante)
			}
		}
	}

	nt.BBSeat = bbSeat
	nt.BBHasActed = false
	// A short all-in blind commits less than the nominal big blind; the
	// bet to match is whatever actually went in.
	nt.CurrentBet = nt.maxInHandStreetCommitted()
	nt.LastRaiseSize = nt.BigBlind

	return nt, []SideEffect{
		Redispatch{Event: DealHole{}},
		Redispatch{Event: EnterStreet{Street: StreetPreflop}},
	}, nil
}

// postBlind deducts amount from a seat's chips (clamped) and records it as
// committed for the hand and for the current street.
func postBlind(s *Seat, amount int64) {
	d := amount
	if d > s.Chips {
		d = s.Chips
	}
	s.Chips -= d
	s.Committed += d
	s.StreetCommitted += d
	if s.Chips == 0 {
		s.Status = SeatAllIn
	}
}

// postAnte is dead money: it joins the hand commitment (and therefore the
// pots) but not the street commitment, so it never inflates the bet to
// match.
func postAnte(s *Seat, amount int64) {
	d := amount
	if d > s.Chips {
		d = s.Chips
	}
	s.Chips -= d
	s.Committed += d
	if s.Chips == 0 {
		s.Status = SeatAllIn
	}
}

func toSeatSet(seats []int) map[int]bool {
	out := make(map[int]bool, len(seats))
	for _, s := range seats {
		out[s] = true
	}
	return out
}
