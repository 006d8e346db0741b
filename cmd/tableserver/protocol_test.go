package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokertable/internal/engine"
	"pokertable/internal/sitout"
	"pokertable/pkg/cards"
)

func TestChipAmountValidation(t *testing.T) {
	cases := []struct {
		in    string
		want  int64
		valid bool
	}{
		{"", 0, true},
		{"0", 0, true},
		{"250", 250, true},
		{"250.0", 250, true},
		{"12.5", 0, false},
		{"-10", 0, false},
		{"-0.5", 0, false},
		{"1e3", 1000, true},
		{"chips", 0, false},
	}
	for _, c := range cases {
		got, ok := chipAmount(json.Number(c.in))
		assert.Equal(t, c.valid, ok, "input %q", c.in)
		if c.valid {
			assert.Equal(t, c.want, got, "input %q", c.in)
		}
	}
}

func TestParseActionKind(t *testing.T) {
	for in, want := range map[string]engine.ActionKind{
		"FOLD":  engine.ActionFold,
		"CHECK": engine.ActionCheck,
		"CALL":  engine.ActionCall,
		"BET":   engine.ActionBet,
		"RAISE": engine.ActionRaise,
		"ALLIN": engine.ActionAllIn,
	} {
		got, ok := parseActionKind(in)
		require.True(t, ok, "action %q", in)
		assert.Equal(t, want, got)
	}

	_, ok := parseActionKind("SHOVE")
	assert.False(t, ok)
}

func snapshotFixture() engine.Table {
	tbl := engine.NewTable("snap", 5, 10, 0, engine.DefaultConfig())
	tbl.Seats[0] = engine.Seat{ID: 0, PlayerID: "alice", Chips: 990, Committed: 10, StreetCommitted: 10, Status: engine.SeatActive}
	tbl.Seats[1] = engine.Seat{ID: 1, PlayerID: "bob", Chips: 990, Committed: 10, StreetCommitted: 10, Status: engine.SeatActive}
	a := [2]cards.Card{cards.FromID(0), cards.FromID(1)}
	b := [2]cards.Card{cards.FromID(2), cards.FromID(3)}
	tbl.Seats[0].Hand = &a
	tbl.Seats[1].Hand = &b
	tbl.Phase = engine.PhasePreflop
	tbl.Street = engine.StreetPreflop
	tbl.CurrentBet = 10
	return tbl
}

func TestBuildSnapshotHidesOpponentHoleCards(t *testing.T) {
	tbl := snapshotFixture()

	snap := buildSnapshot(tbl, nil, "alice")
	require.Len(t, snap.Seats, engine.NumSeats)
	assert.Equal(t, []int{0, 1}, snap.Seats[0].Cards, "viewer sees own cards")
	assert.Nil(t, snap.Seats[1].Cards, "opponent cards hidden before showdown")
}

func TestBuildSnapshotRevealsAtShowdown(t *testing.T) {
	tbl := snapshotFixture()
	tbl.Phase = engine.PhaseShowdown

	snap := buildSnapshot(tbl, nil, "")
	assert.Equal(t, []int{0, 1}, snap.Seats[0].Cards)
	assert.Equal(t, []int{2, 3}, snap.Seats[1].Cards)
}

func TestBuildSnapshotDerivesSittingOutFromController(t *testing.T) {
	tbl := snapshotFixture()
	so := sitout.NewController(time.Hour, nil)
	so.MarkSitOut("bob", 1, sitout.ReasonVoluntary)

	snap := buildSnapshot(tbl, so, "")
	assert.False(t, snap.Seats[0].SittingOut)
	assert.True(t, snap.Seats[1].SittingOut)
	// Seat status itself never carries a sitting-out value.
	assert.Equal(t, "active", snap.Seats[1].Status)
}

func TestErrorMsgShape(t *testing.T) {
	msg := errorMsg("cmd-1", codeSeatTaken, "seat occupied")
	assert.Equal(t, "ERROR", msg["type"])
	assert.Equal(t, "cmd-1", msg["cmdId"])
	assert.Equal(t, "SEAT_TAKEN", msg["code"])
}

func TestCountdownMsgCarriesClientRenderData(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	msg := countdownMsg("game_start", start, 10*time.Second)

	assert.Equal(t, "COUNTDOWN_START", msg["type"])
	assert.Equal(t, "game_start", msg["countdownType"])
	assert.Equal(t, start.UnixMilli(), msg["startTime"])
	assert.Equal(t, int64(10_000), msg["duration"])
}
