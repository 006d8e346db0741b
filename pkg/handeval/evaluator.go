// Package handeval adapts the chehsunliu/poker evaluator to the table
// engine's hand-evaluation contract: a 7-card hand maps to a single
// non-negative integer score where lower is better.
package handeval

import (
	"fmt"

	chehsunliu "github.com/chehsunliu/poker"

	"pokertable/pkg/cards"
)

var rankChars = [...]byte{'2', '3', '4', '5', '6', '7', '8', '9', 'T', 'J', 'Q', 'K', 'A'}
var suitChars = [...]byte{'c', 'd', 'h', 's'}

func toChehsunliu(c cards.Card) (chehsunliu.Card, error) {
	if c.Rank < cards.Rank2 || c.Rank > cards.RankA {
		return chehsunliu.Card(0), fmt.Errorf("handeval: invalid rank %v", c.Rank)
	}
	if c.Suit < cards.SuitClubs || c.Suit > cards.SuitSpades {
		return chehsunliu.Card(0), fmt.Errorf("handeval: invalid suit %v", c.Suit)
	}
	s := string([]byte{rankChars[c.Rank], suitChars[c.Suit]})
	return chehsunliu.NewCard(s), nil
}

// Evaluate scores 2 hole cards plus 3-5 community cards (5-7 total). The
// returned score is a total, deterministic integer where lower is better;
// the table engine compares scores directly and never inspects category.
func Evaluate(holeCards []cards.Card, community []cards.Card) (int, error) {
	all := make([]cards.Card, 0, len(holeCards)+len(community))
	all = append(all, holeCards...)
	all = append(all, community...)
	return EvaluateCards(all)
}

// EvaluateCards scores an arbitrary 5-7 card hand.
func EvaluateCards(all []cards.Card) (int, error) {
	if len(all) < 5 || len(all) > 7 {
		return 0, fmt.Errorf("handeval: need 5-7 cards, got %d", len(all))
	}
	hand := make([]chehsunliu.Card, 0, len(all))
	for _, c := range all {
		cc, err := toChehsunliu(c)
		if err != nil {
			return 0, err
		}
		hand = append(hand, cc)
	}
	return int(chehsunliu.Evaluate(hand)), nil
}

// CategoryLabel derives a UI-facing category string ("Straight Flush",
// "Two Pair", ...) from a score produced by Evaluate. This is a
// descriptive convenience only; the engine core never depends on it.
func CategoryLabel(score int) string {
	switch chehsunliu.RankClass(int32(score)) {
	case 1:
		return "Straight Flush"
	case 2:
		return "Four of a Kind"
	case 3:
		return "Full House"
	case 4:
		return "Flush"
	case 5:
		return "Straight"
	case 6:
		return "Three of a Kind"
	case 7:
		return "Two Pair"
	case 8:
		return "Pair"
	default:
		return "High Card"
	}
}
