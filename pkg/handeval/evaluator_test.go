package handeval

import (
	"testing"

	"pokertable/pkg/cards"
)

func mustCards(t *testing.T, ids ...int) []cards.Card {
	t.Helper()
	out := make([]cards.Card, len(ids))
	for i, id := range ids {
		out[i] = cards.FromID(id)
	}
	return out
}

func TestEvaluateLowerIsBetter(t *testing.T) {
	// Royal flush of spades: A,K,Q,J,10 of spades = ids 51,47,43,39,35
	royal, err := EvaluateCards(mustCards(t, 51, 47, 43, 39, 35))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// High card hand: 2c 5d 9h Kd As (no pair, no flush, no straight)
	highCard, err := EvaluateCards(mustCards(t, 0, 13, 30, 45, 51))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if royal >= highCard {
		t.Errorf("expected royal flush score (%d) to be lower (better) than high card score (%d)", royal, highCard)
	}
}

func TestEvaluateRejectsWrongCount(t *testing.T) {
	if _, err := EvaluateCards(mustCards(t, 0, 1, 2, 3)); err == nil {
		t.Fatal("expected error for 4-card hand")
	}
}

func TestCategoryLabelMatchesScore(t *testing.T) {
	royal, err := EvaluateCards(mustCards(t, 51, 47, 43, 39, 35))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label := CategoryLabel(royal); label != "Straight Flush" {
		t.Errorf("expected royal flush to label as Straight Flush, got %q", label)
	}
}
