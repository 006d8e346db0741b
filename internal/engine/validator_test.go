package engine

import "testing"

// bettingTable sets up a mid-street table with the given actor.
func bettingTable(actor int) Table {
	tbl := seatedTable([]int{0, 1, 2}, 0)
	tbl.Phase = PhaseFlop
	tbl.Street = StreetFlop
	tbl.LastRaiseSize = 10
	tbl.Actor = seatPtr(actor)
	return tbl
}

func TestPreconditionsRejectOutOfTurn(t *testing.T) {
	tbl := bettingTable(0)

	if _, _, err := tbl.validateAction(1, ActionCheck, 0); err != ErrNotYourTurn {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, _, err := tbl.validateAction(9, ActionCheck, 0); err != ErrUnknownSeat {
		t.Fatalf("expected ErrUnknownSeat, got %v", err)
	}

	tbl.Phase = PhaseShowdown
	if _, _, err := tbl.validateAction(0, ActionCheck, 0); err != ErrWrongPhase {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
}

func TestNegativeAmountRejected(t *testing.T) {
	tbl := bettingTable(0)
	if _, _, err := tbl.validateAction(0, ActionBet, -5); err == nil {
		t.Fatal("expected negative amount to fail validation")
	}
}

func TestCheckRequiresNothingToCall(t *testing.T) {
	tbl := bettingTable(0)
	if _, _, err := tbl.validateAction(0, ActionCheck, 0); err != nil {
		t.Fatalf("check with no bet should be legal: %v", err)
	}

	tbl.CurrentBet = 20
	tbl.Seats[1].StreetCommitted = 20
	if _, _, err := tbl.validateAction(0, ActionCheck, 0); err == nil {
		t.Fatal("check facing a bet must fail")
	}
}

func TestCallNormalisesToStack(t *testing.T) {
	tbl := bettingTable(0)
	tbl.CurrentBet = 5000
	tbl.Seats[1].StreetCommitted = 5000
	tbl.Seats[1].Chips = 0
	tbl.Seats[1].Status = SeatAllIn

	delta, _, err := tbl.validateAction(0, ActionCall, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delta != 1000 {
		t.Fatalf("call must clamp to the stack, got %d", delta)
	}
}

func TestCallWithNothingOwedRejected(t *testing.T) {
	tbl := bettingTable(0)
	if _, _, err := tbl.validateAction(0, ActionCall, 0); err == nil {
		t.Fatal("call with toCall == 0 must fail")
	}
}

func TestBetRules(t *testing.T) {
	tbl := bettingTable(0)

	if _, _, err := tbl.validateAction(0, ActionBet, 5); err != ErrBetTooSmall {
		t.Fatalf("bet below BB must fail, got %v", err)
	}
	if _, _, err := tbl.validateAction(0, ActionBet, 2000); err != ErrInsufficientChips {
		t.Fatalf("bet above stack must fail, got %v", err)
	}
	if delta, _, err := tbl.validateAction(0, ActionBet, 10); err != nil || delta != 10 {
		t.Fatalf("minimum bet should pass: delta=%d err=%v", delta, err)
	}

	// An all-in below the big blind is the one legal undersized bet.
	tbl.Seats[0].Chips = 7
	if delta, _, err := tbl.validateAction(0, ActionBet, 7); err != nil || delta != 7 {
		t.Fatalf("all-in undersized bet should pass: delta=%d err=%v", delta, err)
	}

	tbl.Seats[0].Chips = 1000
	tbl.CurrentBet = 20
	tbl.Seats[1].StreetCommitted = 20
	if _, _, err := tbl.validateAction(0, ActionBet, 50); err == nil {
		t.Fatal("bet with a live bet outstanding must fail")
	}
}

func TestRaiseRules(t *testing.T) {
	tbl := bettingTable(0)
	tbl.CurrentBet = 20
	tbl.LastRaiseSize = 20
	tbl.Seats[1].StreetCommitted = 20

	if _, _, err := tbl.validateAction(0, ActionRaise, 10); err != ErrBetTooSmall {
		t.Fatalf("raise below lastRaiseSize must fail, got %v", err)
	}
	if delta, _, err := tbl.validateAction(0, ActionRaise, 20); err != nil || delta != 40 {
		t.Fatalf("minimum raise should commit toCall+increment: delta=%d err=%v", delta, err)
	}

	// A short all-in raise is allowed when the total equals the stack.
	tbl.Seats[0].Chips = 30
	delta, short, err := tbl.validateAction(0, ActionRaise, 10)
	if err != nil || delta != 30 {
		t.Fatalf("all-in short raise should pass: delta=%d err=%v", delta, err)
	}
	if !short {
		t.Fatal("an all-in raise below the minimum must be flagged short")
	}
}

func TestRaiseLockedSeatRejected(t *testing.T) {
	tbl := bettingTable(0)
	tbl.CurrentBet = 20
	tbl.Seats[1].StreetCommitted = 20
	tbl.RaiseLocked[0] = true

	if _, _, err := tbl.validateAction(0, ActionRaise, 20); err == nil {
		t.Fatal("locked seat must not be allowed to raise")
	}
	if _, _, err := tbl.validateAction(0, ActionCall, 0); err != nil {
		t.Fatalf("locked seat may still call: %v", err)
	}
}

func TestAllInAlwaysAvailableWithChips(t *testing.T) {
	tbl := bettingTable(0)
	delta, _, err := tbl.validateAction(0, ActionAllIn, 0)
	if err != nil || delta != 1000 {
		t.Fatalf("all-in should commit the whole stack: delta=%d err=%v", delta, err)
	}

	tbl.Seats[0].Chips = 0
	if _, _, err := tbl.validateAction(0, ActionAllIn, 0); err == nil {
		t.Fatal("all-in with no chips must fail")
	}
}

func TestAvailableActionSet(t *testing.T) {
	tbl := bettingTable(0)

	got := tbl.AvailableActions(0)
	want := map[ActionKind]bool{ActionFold: true, ActionCheck: true, ActionBet: true, ActionAllIn: true}
	assertActionSet(t, got, want)

	tbl.CurrentBet = 20
	tbl.LastRaiseSize = 20
	tbl.Seats[1].StreetCommitted = 20
	got = tbl.AvailableActions(0)
	want = map[ActionKind]bool{ActionFold: true, ActionCall: true, ActionRaise: true, ActionAllIn: true}
	assertActionSet(t, got, want)

	// Not enough behind to make a full raise: RAISE drops out, ALLIN stays.
	tbl.Seats[0].Chips = 30
	got = tbl.AvailableActions(0)
	want = map[ActionKind]bool{ActionFold: true, ActionCall: true, ActionAllIn: true}
	assertActionSet(t, got, want)
}

func TestAvailableActionsEmptyForNonActor(t *testing.T) {
	tbl := bettingTable(0)
	if got := tbl.AvailableActions(1); got != nil {
		t.Fatalf("non-actor should get no actions, got %v", got)
	}
}

func assertActionSet(t *testing.T, got []ActionKind, want map[ActionKind]bool) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("action set %v, want %v", got, want)
	}
	for _, a := range got {
		if !want[a] {
			t.Fatalf("unexpected action %v in %v", a, got)
		}
	}
}
