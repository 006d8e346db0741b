// Package timers implements the table engine's two scheduling layers: the
// server-authoritative action timer that drives TimeoutAutoFold, and the
// client-driven countdown manager that only records display metadata.
package timers

import (
	"log"
	"sync"
	"time"
)

// Dispatcher is the hook the timer manager needs (implemented by the
// table server's per-table hub): enough to post TimeoutAutoFold back into
// the table's event queue without internal/timers importing
// internal/engine's event loop directly.
type Dispatcher interface {
	DispatchTimeoutAutoFold(seat int)
}

type actionTimer struct {
	createdAt time.Time
	cancel    *time.Timer
}

// ActionManager owns at most one running action timer per table. Starting
// a new seat's timer clears the previous one; expiry callbacks check that
// their timer is still the current one, so a stale timer firing after
// replacement is a no-op.
type ActionManager struct {
	mu          sync.Mutex
	current     *actionTimer
	currentSeat int
	dispatcher  Dispatcher
}

// NewActionManager builds a manager that posts TimeoutAutoFold through d.
// Consecutive-timeout counting lives in the sit-out controller, not here;
// this manager only owns the clock.
func NewActionManager(d Dispatcher) *ActionManager {
	return &ActionManager{dispatcher: d}
}

// StartAction (re)starts the action clock for seat, cancelling whatever
// timer was previously running for any seat.
func (m *ActionManager) StartAction(seat int, createdAt time.Time, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.cancel.Stop()
	}

	at := &actionTimer{createdAt: createdAt}
	m.currentSeat = seat
	m.current = at
	at.cancel = time.AfterFunc(d, func() {
		m.fire(seat, at)
	})
}

// StopAction cancels the running timer if it belongs to seat.
func (m *ActionManager) StopAction(seat int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.currentSeat == seat {
		m.current.cancel.Stop()
		m.current = nil
	}
}

func (m *ActionManager) fire(seat int, at *actionTimer) {
	m.mu.Lock()
	stale := m.current != at
	m.mu.Unlock()
	if stale {
		return
	}
	if m.dispatcher != nil {
		m.dispatcher.DispatchTimeoutAutoFold(seat)
	}
}

// CountdownKind enumerates the display-only countdown types, ordered by
// client display priority (highest first).
type CountdownKind string

const (
	CountdownAction    CountdownKind = "action"
	CountdownReconnect CountdownKind = "reconnect"
	CountdownGameStart CountdownKind = "game_start"
	CountdownStreetDeal CountdownKind = "street_deal"
	CountdownNewHand   CountdownKind = "new_hand"
)

var priorityOrder = []CountdownKind{
	CountdownAction, CountdownReconnect, CountdownGameStart, CountdownStreetDeal, CountdownNewHand,
}

// Record is the client-facing countdown display record.
type Record struct {
	ID        string
	Kind      CountdownKind
	StartTime time.Time
	Duration  time.Duration
	Metadata  map[string]string
}

func (r Record) expired(now time.Time, grace time.Duration) bool {
	return now.After(r.StartTime.Add(r.Duration).Add(grace))
}

// CountdownManager records client-facing countdown display data. It does
// not drive any state transition itself — validators check elapsed
// duration when a completion event arrives — but expired records are
// garbage-collected periodically to free memory.
type CountdownManager struct {
	mu      sync.Mutex
	records map[string]Record
	nextID  int
	gcEvery time.Duration
	grace   time.Duration
	stop    chan struct{}
	logger  *log.Logger
}

// NewCountdownManager starts a background GC goroutine on the given
// interval; call Stop to release it.
func NewCountdownManager(gcEvery, grace time.Duration) *CountdownManager {
	m := &CountdownManager{
		records: map[string]Record{},
		gcEvery: gcEvery,
		grace:   grace,
		stop:    make(chan struct{}),
		logger:  log.New(log.Writer(), "timers: ", log.LstdFlags),
	}
	go m.gcLoop()
	return m
}

// Start begins a countdown of the given kind with the given duration,
// using time.Now() as its start time.
func (m *CountdownManager) Start(kind string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := kind + "-" + time.Now().Format("150405.000")
	m.records[id] = Record{ID: id, Kind: CountdownKind(kind), StartTime: time.Now(), Duration: d}
}

// Clear removes every record of the given kind.
func (m *CountdownManager) Clear(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.records {
		if string(r.Kind) == kind {
			delete(m.records, id)
		}
	}
}

// Active returns all non-expired records, ordered by display priority.
func (m *CountdownManager) Active() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []Record
	for _, kind := range priorityOrder {
		for _, r := range m.records {
			if r.Kind == kind && !r.expired(now, m.grace) {
				out = append(out, r)
			}
		}
	}
	return out
}

// Elapsed reports whether a record of kind, if any, has run its full
// duration as of now — used to validate a completion event's timing.
func (m *CountdownManager) Elapsed(kind string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, r := range m.records {
		if string(r.Kind) == kind && now.Before(r.StartTime.Add(r.Duration)) {
			return false
		}
	}
	return true
}

func (m *CountdownManager) gcLoop() {
	ticker := time.NewTicker(m.gcEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

func (m *CountdownManager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, r := range m.records {
		if r.expired(now, m.grace) {
			delete(m.records, id)
		}
	}
}

// Stop halts the GC goroutine.
func (m *CountdownManager) Stop() {
	close(m.stop)
}
