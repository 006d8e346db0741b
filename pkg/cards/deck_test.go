package cards

import "testing"

func TestShuffleContainsEachCardOnce(t *testing.T) {
	deck := Shuffle("hand-1-1000-42")
	if len(deck) != NumCards {
		t.Fatalf("expected %d cards, got %d", NumCards, len(deck))
	}
	seen := make(map[int]bool)
	for _, c := range deck {
		if seen[c.ID()] {
			t.Fatalf("duplicate card %v in shuffled deck", c)
		}
		seen[c.ID()] = true
	}
	if len(seen) != NumCards {
		t.Fatalf("expected %d distinct cards, got %d", NumCards, len(seen))
	}
}

func TestShuffleDeterministic(t *testing.T) {
	a := Shuffle("same-seed")
	b := Shuffle("same-seed")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("shuffle(%q) not deterministic at index %d: %v != %v", "same-seed", i, a[i], b[i])
		}
	}
}

func TestShuffleDiffersAcrossSeeds(t *testing.T) {
	a := Shuffle("seed-a")
	b := Shuffle("seed-b")
	identical := true
	for i := range a {
		if a[i] != b[i] {
			identical = false
			break
		}
	}
	if identical {
		t.Fatal("expected different seeds to produce different orderings")
	}
}

func TestCommitIsPureFunctionOfSeed(t *testing.T) {
	d1 := Shuffle("seed-x")
	d2 := Shuffle("seed-x")
	if Commit(d1) != Commit(d2) {
		t.Fatal("commit should be deterministic for identical seeds")
	}

	d3 := Shuffle("seed-y")
	if Commit(d1) == Commit(d3) {
		t.Fatal("commit should differ for different seeds (modulo hash collision)")
	}
}

func TestDrawNextAdvancesIndex(t *testing.T) {
	deck := Shuffle("draw-seed")
	drawn, idx, err := DrawNext(deck, 0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 2 {
		t.Errorf("expected idx 2, got %d", idx)
	}
	if len(drawn) != 2 {
		t.Errorf("expected 2 cards drawn, got %d", len(drawn))
	}
}

func TestDrawNextFailsPastEnd(t *testing.T) {
	deck := Shuffle("draw-seed-2")
	if _, _, err := DrawNext(deck, 50, 3); err == nil {
		t.Fatal("expected error drawing past end of deck")
	}
}

func TestDealHoleRoundRobin(t *testing.T) {
	deck := Shuffle("hole-seed")
	hands, idx, err := DealHole(deck, 0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 6 {
		t.Errorf("expected idx 6 after dealing 3x2 cards, got %d", idx)
	}
	// Round-robin: first cards dealt are deck[0], deck[1], deck[2]; second round deck[3..5].
	if hands[0][0] != deck[0] || hands[1][0] != deck[1] || hands[2][0] != deck[2] {
		t.Fatal("expected first-round cards dealt one-per-seat before second round")
	}
	if hands[0][1] != deck[3] || hands[1][1] != deck[4] || hands[2][1] != deck[5] {
		t.Fatal("expected second-round cards dealt after all first-round cards")
	}
}

func TestDealFlopBurnsOne(t *testing.T) {
	deck := Shuffle("flop-seed")
	burn, flop, idx, err := DealFlop(deck, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if burn != deck[0] {
		t.Errorf("expected burn card to be deck[0]")
	}
	if len(flop) != 3 || flop[0] != deck[1] || flop[2] != deck[3] {
		t.Errorf("unexpected flop cards: %v", flop)
	}
	if idx != 4 {
		t.Errorf("expected idx 4, got %d", idx)
	}
}

func TestDealTurnOrRiverBurnsOne(t *testing.T) {
	deck := Shuffle("turn-seed")
	burn, card, idx, err := DealTurnOrRiver(deck, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if burn != deck[10] || card != deck[11] {
		t.Errorf("unexpected burn/card: %v %v", burn, card)
	}
	if idx != 12 {
		t.Errorf("expected idx 12, got %d", idx)
	}
}
