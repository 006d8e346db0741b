package engine

import (
	"sync"
	"testing"
	"time"
)

type recordingPublisher struct {
	mu      sync.Mutex
	reasons []string
	handEnd int
}

func (p *recordingPublisher) PublishSnapshot(t Table, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reasons = append(p.reasons, reason)
}

func (p *recordingPublisher) PublishHandEnd(t Table, handNumber int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handEnd++
}

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) OnEventApplied(tableID string, handNumber int, seq int64, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev.EventType())
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func newTestLoop(t *testing.T) (*Loop, *recordingPublisher, *recordingSink) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.StreetDealDelay = 0 // deal streets immediately under test
	tbl := NewTable("loop-test", 5, 10, 0, cfg)
	pub := &recordingPublisher{}
	sink := &recordingSink{}
	loop := NewLoop(tbl, cfg, nil, nil, pub, func() (string, int64) {
		return "loop-seed", 1_000_000
	})
	loop.SetEventSink(sink)
	go loop.Run()
	t.Cleanup(loop.Stop)
	return loop, pub, sink
}

func TestLoopProcessesEventsSequentially(t *testing.T) {
	loop, _, sink := newTestLoop(t)

	loop.Dispatch(PlayerJoin{Seat: 0, PlayerID: "a", Chips: 1000})
	loop.Dispatch(PlayerJoin{Seat: 1, PlayerID: "b", Chips: 1000})
	waitFor(t, func() bool { return loop.Snapshot().Seats[1].Occupied() })

	loop.StartHandNow(nil)
	waitFor(t, func() bool { return loop.Snapshot().Phase == PhasePreflop })

	snap := loop.Snapshot()
	if snap.Actor == nil || *snap.Actor != 0 {
		t.Fatalf("expected button to act, actor=%v", snap.Actor)
	}

	loop.Dispatch(Action{Seat: 0, Kind: ActionCall})
	loop.Dispatch(Action{Seat: 1, Kind: ActionCheck})
	waitFor(t, func() bool { return loop.Snapshot().Phase == PhaseFlop })

	types := sink.types()
	wantPrefix := []string{"PlayerJoin", "PlayerJoin", "StartHand", "PostBlinds", "DealHole", "EnterStreet", "Action"}
	if len(types) < len(wantPrefix) {
		t.Fatalf("event log too short: %v", types)
	}
	for i, w := range wantPrefix {
		if types[i] != w {
			t.Fatalf("event log[%d] = %s, want %s (log %v)", i, types[i], w, types)
		}
	}

	if got := loop.EventLog(); len(got) != len(types) {
		t.Fatalf("EventLog length %d != sink length %d", len(got), len(types))
	}
}

func TestLoopRejectsInvalidEventWithoutStateChange(t *testing.T) {
	loop, _, sink := newTestLoop(t)

	loop.Dispatch(PlayerJoin{Seat: 0, PlayerID: "a", Chips: 1000})
	waitFor(t, func() bool { return loop.Snapshot().Seats[0].Occupied() })

	// Duplicate seat: validation failure, no log entry, no state change.
	loop.Dispatch(PlayerJoin{Seat: 0, PlayerID: "b", Chips: 1000})
	loop.Dispatch(PlayerJoin{Seat: 2, PlayerID: "c", Chips: 1000})
	waitFor(t, func() bool { return loop.Snapshot().Seats[2].Occupied() })

	if got := loop.Snapshot().Seats[0].PlayerID; got != "a" {
		t.Fatalf("rejected join must not change the seat, got %q", got)
	}
	for _, ev := range sink.types() {
		if ev != "PlayerJoin" {
			t.Fatalf("unexpected event %s in log", ev)
		}
	}
	if got := len(sink.types()); got != 2 {
		t.Fatalf("expected 2 applied events, got %d", got)
	}
}

func TestLoopManagerialNoOpIsSwallowed(t *testing.T) {
	loop, _, sink := newTestLoop(t)

	loop.Dispatch(PlayerJoin{Seat: 0, PlayerID: "a", Chips: 1000})
	waitFor(t, func() bool { return loop.Snapshot().Seats[0].Occupied() })

	// A stale timeout for a seat that is not acting is idempotent: no
	// error, no state change, no log entry.
	loop.Dispatch(TimeoutAutoFold{Seat: 0})
	loop.Dispatch(PlayerJoin{Seat: 1, PlayerID: "b", Chips: 1000})
	waitFor(t, func() bool { return loop.Snapshot().Seats[1].Occupied() })

	if got := len(sink.types()); got != 2 {
		t.Fatalf("expected stale timeout to stay out of the log, got %d entries", got)
	}
}

func TestLoopAppliesRebuy(t *testing.T) {
	loop, _, sink := newTestLoop(t)

	loop.Dispatch(PlayerJoin{Seat: 0, PlayerID: "a", Chips: 1000})
	waitFor(t, func() bool { return loop.Snapshot().Seats[0].Occupied() })

	// A rebuy's only immediate state change is the pending top-up; the
	// loop must still apply and log it rather than rejecting a no-op.
	loop.Dispatch(PlayerRebuy{Seat: 0, Amount: 500})
	waitFor(t, func() bool { return loop.Snapshot().Seats[0].PendingRebuy == 500 })

	types := sink.types()
	if len(types) != 2 || types[1] != "PlayerRebuy" {
		t.Fatalf("expected PlayerRebuy in the event log, got %v", types)
	}
}

func TestLoopGameStartHookFires(t *testing.T) {
	tbl := NewTable("hook-test", 5, 10, 0, DefaultConfig())
	loop := NewLoop(tbl, DefaultConfig(), nil, nil, nil, func() (string, int64) {
		return "hook-seed", 1
	})

	var mu sync.Mutex
	fired := 0
	loop.SetGameStartHook(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	go loop.Run()
	t.Cleanup(loop.Stop)

	loop.Dispatch(PlayerJoin{Seat: 0, PlayerID: "a", Chips: 1000})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired > 0
	})
}
