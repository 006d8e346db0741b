package engine

import "fmt"

// CheckInvariants validates the structural invariants that must hold after
// every reducer application. It returns the first violation found, or nil.
func (t *Table) CheckInvariants() error {
	seen := map[int]bool{}
	checkCard := func(id int, where string) error {
		if id < 0 || id > 51 {
			return fmt.Errorf("engine: invariant violated: card %d out of range (%s)", id, where)
		}
		if seen[id] {
			return fmt.Errorf("engine: invariant violated: duplicate card %d (%s)", id, where)
		}
		seen[id] = true
		return nil
	}

	for _, c := range t.CommunityCards {
		if err := checkCard(c.ID(), "community"); err != nil {
			return err
		}
	}
	for _, c := range t.BurnFlop {
		if err := checkCard(c.ID(), "burn-flop"); err != nil {
			return err
		}
	}
	for _, c := range t.BurnTurn {
		if err := checkCard(c.ID(), "burn-turn"); err != nil {
			return err
		}
	}
	for _, c := range t.BurnRiver {
		if err := checkCard(c.ID(), "burn-river"); err != nil {
			return err
		}
	}
	for i, s := range t.Seats {
		if s.Chips < 0 {
			return fmt.Errorf("engine: invariant violated: seat %d negative chips", i)
		}
		if s.Committed < s.StreetCommitted || s.StreetCommitted < 0 {
			return fmt.Errorf("engine: invariant violated: seat %d committed/streetCommitted", i)
		}
		if s.Hand != nil {
			for _, c := range s.Hand {
				if err := checkCard(c.ID(), fmt.Sprintf("seat-%d-hand", i)); err != nil {
					return err
				}
			}
		}
	}

	if len(t.CommunityCards) != 0 && len(t.CommunityCards) != 3 && len(t.CommunityCards) != 4 && len(t.CommunityCards) != 5 {
		return fmt.Errorf("engine: invariant violated: community card count %d", len(t.CommunityCards))
	}

	if t.DeckIndex < 0 || t.DeckIndex > 52 {
		return fmt.Errorf("engine: invariant violated: deckIndex %d out of range", t.DeckIndex)
	}

	var maxStreetCommitted int64
	for _, s := range t.Seats {
		if s.Status.InHand() && s.StreetCommitted > maxStreetCommitted {
			maxStreetCommitted = s.StreetCommitted
		}
	}
	if t.CurrentBet != maxStreetCommitted {
		return fmt.Errorf("engine: invariant violated: currentBet %d != max streetCommitted %d", t.CurrentBet, maxStreetCommitted)
	}

	var prevCap int64 = -1
	for _, p := range t.Pots {
		if p.Amount <= 0 {
			return fmt.Errorf("engine: invariant violated: non-positive pot amount")
		}
		if len(p.Eligible) == 0 {
			return fmt.Errorf("engine: invariant violated: pot with empty eligible set")
		}
		if p.Cap != nil {
			if *p.Cap <= prevCap {
				return fmt.Errorf("engine: invariant violated: pot caps not strictly ascending")
			}
			prevCap = *p.Cap
		}
	}

	if t.Actor != nil {
		if *t.Actor < 0 || *t.Actor >= NumSeats || t.Seats[*t.Actor].Status != SeatActive {
			return fmt.Errorf("engine: invariant violated: actor seat %d not active", *t.Actor)
		}
	}

	return nil
}

// TotalChips sums chips currently behind every occupied seat plus every
// seat's whole-hand commitment. Pots are a derived grouping of the same
// committed chips (not additional money), so they are deliberately not
// added again here; PotTotal below exists for the separate pot-integrity
// check the table-engine test suite runs after CloseStreet.
func (t *Table) TotalChips() int64 {
	var total int64
	for _, s := range t.Seats {
		if s.Occupied() {
			total += s.Chips + s.Committed
		}
	}
	return total
}

// PotTotal sums all current pot amounts, for comparison against
// CommittedTotal right after CloseStreet.
func (t *Table) PotTotal() int64 {
	var total int64
	for _, p := range t.Pots {
		total += p.Amount
	}
	return total
}

// CommittedTotal sums every seat's whole-hand commitment.
func (t *Table) CommittedTotal() int64 {
	var total int64
	for _, s := range t.Seats {
		total += s.Committed
	}
	return total
}
