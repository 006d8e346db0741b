package cards

import "fmt"

// DrawNext returns the next n cards from deck starting at idx, along with
// the advanced index. It fails if idx+n would run past the end of the deck.
func DrawNext(deck []Card, idx, n int) ([]Card, int, error) {
	if idx < 0 || idx+n > len(deck) {
		return nil, idx, fmt.Errorf("cards: draw %d from index %d exceeds deck of %d", n, idx, len(deck))
	}
	drawn := make([]Card, n)
	copy(drawn, deck[idx:idx+n])
	return drawn, idx + n, nil
}

// DealHole deals two hole cards to each seat in dealing order, one card per
// seat per round, advancing idx as it goes.
func DealHole(deck []Card, idx int, numSeats int) (hands [][2]Card, nextIdx int, err error) {
	if numSeats == 0 {
		return nil, idx, nil
	}
	firstCards := make([]Card, numSeats)
	for i := 0; i < numSeats; i++ {
		var c []Card
		c, idx, err = DrawNext(deck, idx, 1)
		if err != nil {
			return nil, idx, err
		}
		firstCards[i] = c[0]
	}
	hands = make([][2]Card, numSeats)
	for i := 0; i < numSeats; i++ {
		var c []Card
		c, idx, err = DrawNext(deck, idx, 1)
		if err != nil {
			return nil, idx, err
		}
		hands[i] = [2]Card{firstCards[i], c[0]}
	}
	return hands, idx, nil
}

// DealFlop burns one card and draws three, returning the burn and the flop.
func DealFlop(deck []Card, idx int) (burn Card, flop []Card, nextIdx int, err error) {
	b, idx, err := DrawNext(deck, idx, 1)
	if err != nil {
		return Card{}, nil, idx, err
	}
	f, idx, err := DrawNext(deck, idx, 3)
	if err != nil {
		return Card{}, nil, idx, err
	}
	return b[0], f, idx, nil
}

// DealTurnOrRiver burns one card and draws one, used for both the turn and river.
func DealTurnOrRiver(deck []Card, idx int) (burn Card, card Card, nextIdx int, err error) {
	b, idx, err := DrawNext(deck, idx, 1)
	if err != nil {
		return Card{}, Card{}, idx, err
	}
	c, idx, err := DrawNext(deck, idx, 1)
	if err != nil {
		return Card{}, Card{}, idx, err
	}
	return b[0], c[0], idx, nil
}
