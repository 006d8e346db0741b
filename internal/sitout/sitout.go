// Package sitout implements the table engine's sit-out / auto-leave
// controller. It is deliberately external to engine.Table: the
// "is-sitting-out" flag is derived at snapshot time by joining a seat with
// this controller's membership set, never stored as a seat status.
package sitout

import (
	"sync"
	"time"
)

// Reason distinguishes a voluntary sit-out from a timeout-driven one; only
// the former resets the consecutive-timeout counter.
type Reason string

const (
	ReasonVoluntary Reason = "voluntary"
	ReasonTimeout   Reason = "timeout"
)

// LeaveDispatcher lets the controller ask the event loop to post a
// PlayerLeave event when a player's auto-leave timer fires.
type LeaveDispatcher interface {
	DispatchPlayerLeave(seat int)
}

type entry struct {
	seat         int
	firstSitOutAt time.Time
	autoLeave    *time.Timer
}

// Controller holds one table's sit-out state: who is sitting out, their
// consecutive-timeout counts, and their auto-leave fuses.
type Controller struct {
	mu sync.Mutex

	sittingOut   map[string]entry
	timeoutCount map[string]int

	autoLeaveAfter time.Duration
	dispatcher     LeaveDispatcher
}

// NewController builds a controller with the given auto-leave fuse
// duration (5 minutes by default).
func NewController(autoLeaveAfter time.Duration, d LeaveDispatcher) *Controller {
	return &Controller{
		sittingOut:     map[string]entry{},
		timeoutCount:   map[string]int{},
		autoLeaveAfter: autoLeaveAfter,
		dispatcher:     d,
	}
}

// MarkSitOut records playerID as sitting out in seat, starting the
// auto-leave fuse. A voluntary sit-out resets the timeout counter; a
// timeout-driven one does not (it is the count being acted on).
func (c *Controller) MarkSitOut(playerID string, seat int, reason Reason) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reason == ReasonVoluntary {
		c.timeoutCount[playerID] = 0
	}

	if existing, ok := c.sittingOut[playerID]; ok && existing.autoLeave != nil {
		existing.autoLeave.Stop()
	}

	e := entry{seat: seat, firstSitOutAt: time.Now()}
	if c.autoLeaveAfter > 0 {
		e.autoLeave = time.AfterFunc(c.autoLeaveAfter, func() {
			c.fireAutoLeave(playerID)
		})
	}
	c.sittingOut[playerID] = e
}

// MarkSitIn clears playerID's sit-out state and resets its counters.
func (c *Controller) MarkSitIn(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.sittingOut[playerID]; ok && e.autoLeave != nil {
		e.autoLeave.Stop()
	}
	delete(c.sittingOut, playerID)
	c.timeoutCount[playerID] = 0
}

// HandleTimeout increments playerID's consecutive-timeout counter and, at
// MAX_TIMEOUTS, marks them sitting out with ReasonTimeout.
func (c *Controller) HandleTimeout(playerID string, seat int, maxTimeouts int) {
	c.mu.Lock()
	c.timeoutCount[playerID]++
	count := c.timeoutCount[playerID]
	c.mu.Unlock()

	if count >= maxTimeouts {
		c.MarkSitOut(playerID, seat, ReasonTimeout)
	}
}

// ResetTimeouts clears playerID's consecutive-timeout counter, called when
// the player takes any voluntary action.
func (c *Controller) ResetTimeouts(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.timeoutCount, playerID)
}

// HandlePlayerLeave removes all controller state for playerID.
func (c *Controller) HandlePlayerLeave(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.sittingOut[playerID]; ok && e.autoLeave != nil {
		e.autoLeave.Stop()
	}
	delete(c.sittingOut, playerID)
	delete(c.timeoutCount, playerID)
}

// IsSittingOut reports whether playerID is currently sitting out.
func (c *Controller) IsSittingOut(playerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sittingOut[playerID]
	return ok
}

// SittingOutSeats returns the seat indices currently marked sitting out,
// for StartHand's eligibility filter.
func (c *Controller) SittingOutSeats() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	seats := make([]int, 0, len(c.sittingOut))
	for _, e := range c.sittingOut {
		seats = append(seats, e.seat)
	}
	return seats
}

func (c *Controller) fireAutoLeave(playerID string) {
	c.mu.Lock()
	e, ok := c.sittingOut[playerID]
	if ok {
		delete(c.sittingOut, playerID)
		delete(c.timeoutCount, playerID)
	}
	d := c.dispatcher
	c.mu.Unlock()

	if ok && d != nil {
		d.DispatchPlayerLeave(e.seat)
	}
}
