package engine

import "testing"

// seatedTable builds a table where the listed seats are occupied and
// active with 1000 chips, without running a hand.
func seatedTable(active []int, button int) Table {
	tbl := NewTable("ring", 5, 10, 0, DefaultConfig())
	for _, i := range active {
		tbl.Seats[i] = Seat{
			ID:       i,
			PlayerID: "p" + string(rune('a'+i)),
			Chips:    1000,
			Status:   SeatActive,
		}
	}
	tbl.ButtonIndex = button
	return tbl
}

func TestNextActionableSkipsGaps(t *testing.T) {
	tbl := seatedTable([]int{1, 4, 7}, 1)

	cases := []struct{ from, want int }{
		{1, 4},
		{4, 7},
		{7, 1}, // wraps
		{0, 1},
		{8, 1},
	}
	for _, c := range cases {
		if got := tbl.nextActionableFrom(c.from); got != c.want {
			t.Errorf("nextActionableFrom(%d) = %d, want %d", c.from, got, c.want)
		}
	}
}

func TestNextActionableSkipsFoldedAndAllIn(t *testing.T) {
	tbl := seatedTable([]int{0, 1, 2, 3}, 0)
	tbl.Seats[1].Status = SeatFolded
	tbl.Seats[2].Status = SeatAllIn

	if got := tbl.nextActionableFrom(0); got != 3 {
		t.Fatalf("expected folded/all-in seats skipped, got %d", got)
	}
}

func TestNextActionableNoneLeft(t *testing.T) {
	tbl := seatedTable([]int{0, 1}, 0)
	tbl.Seats[0].Status = SeatAllIn
	tbl.Seats[1].Status = SeatAllIn

	if got := tbl.nextActionableFrom(0); got != -1 {
		t.Fatalf("expected -1 with no actionable seats, got %d", got)
	}
}

func TestFirstActorEnumeration(t *testing.T) {
	cases := []struct {
		name      string
		active    []int
		button    int
		bbSeat    int
		preflop   bool
		wantActor int
	}{
		{"heads-up preflop button acts", []int{2, 6}, 2, 6, true, 2},
		{"heads-up preflop wrapped button", []int{0, 8}, 8, 0, true, 8},
		{"heads-up postflop bb acts", []int{2, 6}, 2, 6, false, 6},
		{"heads-up postflop wrapped", []int{0, 8}, 8, 0, false, 0},
		{"multi-way preflop utg after bb", []int{0, 1, 2, 3}, 0, 2, true, 3},
		{"multi-way preflop utg wraps", []int{0, 1, 8}, 1, 0, true, 1},
		{"multi-way postflop sb first", []int{0, 1, 2, 3}, 0, 2, false, 1},
		{"multi-way postflop wraps", []int{0, 4, 8}, 8, 4, false, 0},
	}
	for _, c := range cases {
		tbl := seatedTable(c.active, c.button)
		tbl.BBSeat = c.bbSeat
		if got := tbl.firstActor(c.preflop); got != c.wantActor {
			t.Errorf("%s: firstActor = %d, want %d", c.name, got, c.wantActor)
		}
	}
}

func TestBBOptionPredicate(t *testing.T) {
	tbl := seatedTable([]int{0, 1, 2}, 0)
	tbl.Phase = PhasePreflop
	tbl.BBSeat = 2
	tbl.CurrentBet = 10

	if !tbl.bbOptionApplies(2) {
		t.Fatal("expected BB option to hold before the BB has acted")
	}
	if tbl.bbOptionApplies(1) {
		t.Fatal("BB option only applies when action is on the BB seat")
	}

	tbl.BBHasActed = true
	if tbl.bbOptionApplies(2) {
		t.Fatal("BB option must clear once the BB has acted")
	}

	tbl.BBHasActed = false
	tbl.CurrentBet = 30
	if tbl.bbOptionApplies(2) {
		t.Fatal("BB option must clear once the pot has been raised")
	}
}

func TestRoundCompleteFoldToOne(t *testing.T) {
	tbl := seatedTable([]int{0, 1, 2}, 0)
	tbl.Seats[1].Status = SeatFolded
	tbl.Seats[2].Status = SeatFolded

	done, reason := tbl.roundComplete(0)
	if !done || reason != "fold-to-one" {
		t.Fatalf("expected fold-to-one completion, got %v %q", done, reason)
	}
}

func TestRoundCompleteAllPlayersAllIn(t *testing.T) {
	tbl := seatedTable([]int{0, 1}, 0)
	tbl.Seats[0].Status = SeatAllIn
	tbl.Seats[1].Status = SeatAllIn

	done, reason := tbl.roundComplete(-1)
	if !done || reason != "all-players-allin" {
		t.Fatalf("expected all-in completion, got %v %q", done, reason)
	}
}

func TestRoundCompleteLoneMatchedSeat(t *testing.T) {
	// One seat still has chips, everyone else is all-in; once the live
	// seat has matched there is nobody left to bet against.
	tbl := seatedTable([]int{0, 1, 2}, 0)
	tbl.Phase = PhaseFlop
	tbl.Seats[1].Status = SeatAllIn
	tbl.Seats[2].Status = SeatAllIn
	tbl.CurrentBet = 0

	done, _ := tbl.roundComplete(0)
	if !done {
		t.Fatal("expected completion with a single matched actionable seat")
	}
}

func TestRoundCompleteWaitsForUnmatchedSeats(t *testing.T) {
	tbl := seatedTable([]int{0, 1, 2}, 0)
	tbl.Phase = PhaseFlop
	tbl.CurrentBet = 50
	tbl.LastAggressor = seatPtr(0)
	tbl.Seats[0].StreetCommitted = 50
	tbl.Seats[1].StreetCommitted = 50
	tbl.Seats[2].StreetCommitted = 0
	tbl.ActedThisRound = map[int]bool{0: true, 1: true}

	if done, _ := tbl.roundComplete(2); done {
		t.Fatal("round must not complete while a seat still owes a call")
	}

	tbl.Seats[2].StreetCommitted = 50
	tbl.ActedThisRound[2] = true
	if done, _ := tbl.roundComplete(0); !done {
		t.Fatal("round must complete once every seat has acted and matched")
	}
}

func TestRoundCompleteAllInAggressorClosesOnMatch(t *testing.T) {
	// The aggressor shoved; the ring can never return to them, so the
	// matched check is what closes the cycle.
	tbl := seatedTable([]int{0, 1}, 0)
	tbl.Phase = PhaseFlop
	tbl.CurrentBet = 100
	tbl.LastAggressor = seatPtr(0)
	tbl.Seats[0].Status = SeatAllIn
	tbl.Seats[0].StreetCommitted = 100
	tbl.Seats[1].StreetCommitted = 100
	tbl.ActedThisRound = map[int]bool{0: true, 1: true}

	if done, _ := tbl.roundComplete(1); !done {
		t.Fatal("expected completion after calling an all-in aggressor")
	}
}

func TestButtonRepairSkipsVacatedSeat(t *testing.T) {
	tbl := newTestTable(map[int]int64{0: 1000, 1: 1000, 2: 1000}, 8)
	tbl.HandNumber = 1 // past the first hand, StartHand keeps the button
	tbl = drive(t, tbl, StartHand{Seed: "repair", Timestamp: 3})

	// The button on vacated seat 8 is repaired to seat 0, so the blinds
	// land on 1/2.
	if tbl.Seats[1].StreetCommitted != 5 || tbl.Seats[2].StreetCommitted != 10 {
		t.Fatalf("expected SB/BB at 1/2, got %d/%d",
			tbl.Seats[1].StreetCommitted, tbl.Seats[2].StreetCommitted)
	}
}
