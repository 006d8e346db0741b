package engine

import (
	"log"
	"sync"
	"time"

	"pokertable/internal/metrics"
	"pokertable/pkg/handeval"
)

// maxQueueDepth is a soft bound on the per-table queue: exceeding it surfaces a logic
// error (an infinite reducer loop) instead of silently growing forever.
const maxQueueDepth = 50

// TimerSink lets the event loop ask an external action-timer manager to
// start or cancel the per-seat action clock, without internal/engine
// importing internal/timers directly.
type TimerSink interface {
	StartAction(seat int, createdAt time.Time, d time.Duration)
	StopAction(seat int)
}

// CountdownSink lets the event loop drive the client-facing countdown
// manager the same way.
type CountdownSink interface {
	Start(kind string, d time.Duration)
	Clear(kind string)
}

// Publisher receives table snapshots and hand-end notifications for
// fan-out to subscribers, the streaming mirror, and the analytics store.
type Publisher interface {
	PublishSnapshot(t Table, reason string)
	PublishHandEnd(t Table, handNumber int)
}

// EventSink receives every event that changed table state, in application
// order, for persistence (the append-only event log) and mirroring.
type EventSink interface {
	OnEventApplied(tableID string, handNumber int, seq int64, ev Event)
}

type envelope struct {
	event Event
}

// Loop is the single-threaded, per-table event-processing coroutine: it
// owns the Table value exclusively and drains a FIFO queue of events,
// running each through Reduce and then executing the returned side
// effects, exactly as described in the event-loop component.
type Loop struct {
	mu    sync.Mutex
	table Table
	cfg   Config

	queue chan envelope

	timers     TimerSink
	countdowns CountdownSink
	pub        Publisher

	seed func() (seedString string, timestampMillis int64)

	// onCheckGameStart is invoked for the CHECK_GAME_START side effect.
	// The translation layer owns sit-out membership and the game-start
	// countdown, so the decision whether to dispatch StartHand lives there.
	onCheckGameStart func()

	// eventLog is the per-table append-only log of applied events; given
	// the log from StartHand to HandEnd, replaying from an empty table
	// reproduces the final state bit-for-bit.
	eventLog []Event
	eventSeq int64
	sink     EventSink

	logger *log.Logger

	done chan struct{}
}

// SetEventSink registers the sink that receives each applied event (for
// the persistent event log and the streaming mirror). Call before Run.
func (l *Loop) SetEventSink(s EventSink) {
	l.sink = s
}

// EventLog returns a copy of the applied-event log.
func (l *Loop) EventLog() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.eventLog...)
}

// SetGameStartHook registers the callback run for the CHECK_GAME_START
// side effect (and after invariant-failure recovery). Call before Run.
func (l *Loop) SetGameStartHook(fn func()) {
	l.onCheckGameStart = fn
}

// NewLoop constructs a Loop around an initial table. seed supplies the
// (deckSeed, timestamp) pair for StartHand — kept external to the reducer
// so Reduce stays a pure function of its inputs.
func NewLoop(t Table, cfg Config, timers TimerSink, countdowns CountdownSink, pub Publisher, seed func() (string, int64)) *Loop {
	return &Loop{
		table:      t,
		cfg:        cfg,
		queue:      make(chan envelope, maxQueueDepth+1),
		timers:     timers,
		countdowns: countdowns,
		pub:        pub,
		seed:       seed,
		logger:     log.New(log.Writer(), "engine: ", log.LstdFlags),
		done:       make(chan struct{}),
	}
}

// Snapshot returns a copy of the table's current state.
func (l *Loop) Snapshot() Table {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.Clone()
}

// Run drains the queue until Stop is called. Call it from its own
// goroutine; it is the only goroutine allowed to touch l.table.
func (l *Loop) Run() {
	for {
		select {
		case env := <-l.queue:
			l.process(env.event)
		case <-l.done:
			return
		}
	}
}

// Stop drains and halts the loop.
func (l *Loop) Stop() {
	close(l.done)
	l.drainQueue()
}

// Dispatch enqueues an event for processing. It is safe to call from any
// goroutine (the translation layer, timer callbacks, scheduled
// redispatches).
func (l *Loop) Dispatch(ev Event) {
	if len(l.queue) > maxQueueDepth {
		l.logger.Printf("queue overflow (> %d) on table %s: draining and dropping %s",
			maxQueueDepth, l.tableID(), ev.EventType())
		l.drainQueue()
		return
	}
	l.queue <- envelope{event: ev}
	metrics.SetQueueDepth(l.tableID(), len(l.queue))
}

// drainQueue discards every pending event. Overflow means a reducer loop;
// retrying the backlog would just replay the loop, so processing restarts
// from an empty queue and the operator alarm is the log line above.
func (l *Loop) drainQueue() {
	for {
		select {
		case <-l.queue:
		default:
			return
		}
	}
}

func (l *Loop) tableID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.TableID
}

// DispatchAfter schedules ev to be enqueued after delay, the event loop's
// only source of suspension for scheduled re-dispatch.
func (l *Loop) DispatchAfter(ev Event, delay time.Duration) {
	if delay <= 0 {
		l.Dispatch(ev)
		return
	}
	time.AfterFunc(delay, func() { l.Dispatch(ev) })
}

// StartHandNow builds a StartHand event from the loop's seed source and
// current sit-out membership, and enqueues it. sittingOut is supplied by
// the caller (the sit-out controller) at call time.
func (l *Loop) StartHandNow(sittingOut []int) {
	seedStr, ts := l.seed()
	l.Dispatch(StartHand{Seed: seedStr, Timestamp: ts, SittingOut: sittingOut})
}

func (l *Loop) process(ev Event) {
	l.mu.Lock()
	before := l.table
	next, effects, err := Reduce(before, ev)
	changed := !tableEqualByValue(before, next)

	if err != nil {
		l.mu.Unlock()
		l.logger.Printf("validation failed for %s: %v", ev.EventType(), err)
		return
	}

	if !changed && !isManagerialEvent(ev) {
		l.mu.Unlock()
		l.logger.Printf("no-op rejected for %s", ev.EventType())
		return
	}

	if changed {
		if invErr := next.CheckInvariants(); invErr != nil {
			l.mu.Unlock()
			l.logger.Printf("invariant failure, force-ending hand: %v", invErr)
			metrics.RecordInvariantFailure(before.TableID)
			l.handleInvariantFailure()
			return
		}
	}

	l.table = next
	var seq int64
	if changed {
		l.eventLog = append(l.eventLog, ev)
		l.eventSeq++
		seq = l.eventSeq
	}
	sink := l.sink
	l.mu.Unlock()

	if changed && sink != nil {
		sink.OnEventApplied(next.TableID, next.HandNumber, seq, ev)
	}

	// Every applied event is observable: subscribers diff consecutive
	// snapshots to derive deal/round/showdown notifications.
	if changed && l.pub != nil {
		l.pub.PublishSnapshot(next.Clone(), ev.EventType())
	}

	for _, eff := range effects {
		l.executeSideEffect(eff)
	}
}

// handleInvariantFailure is the only recovery path for a corrupted hand: force
// the hand to HandEnd and, if enough eligible players remain, schedule a
// fresh StartHand.
func (l *Loop) handleInvariantFailure() {
	l.mu.Lock()
	forced, _, _ := Reduce(l.table, HandEnd{})
	l.table = forced
	eligible := 0
	for _, s := range forced.Seats {
		if s.Occupied() && s.Chips > 0 {
			eligible++
		}
	}
	l.mu.Unlock()

	if l.pub != nil {
		l.pub.PublishSnapshot(forced, "invariant-failure")
	}
	if eligible >= l.cfg.MinPlayersToStart && l.onCheckGameStart != nil {
		l.onCheckGameStart()
	}
}

func (l *Loop) executeSideEffect(eff SideEffect) {
	switch e := eff.(type) {
	case StartActionTimer:
		if l.timers != nil {
			l.timers.StartAction(e.Seat, time.Now(), l.cfg.ActionTimeout)
		}
		if l.countdowns != nil {
			l.countdowns.Start("action", l.cfg.ActionTimeout)
		}
	case StopActionTimer:
		if l.timers != nil {
			l.timers.StopAction(e.Seat)
		}
		if l.countdowns != nil {
			l.countdowns.Clear("action")
		}
	case StartCountdown:
		if l.countdowns != nil {
			l.countdowns.Start(e.Kind, e.Duration)
		}
	case ClearCountdowns:
		if l.countdowns != nil {
			l.countdowns.Clear(e.Kind)
		}
	case Redispatch:
		l.Dispatch(e.Event)
	case ScheduleRedispatch:
		l.DispatchAfter(e.Event, e.Delay)
	case EmitSnapshot:
		if l.pub != nil {
			l.pub.PublishSnapshot(l.Snapshot(), e.Reason)
		}
	case EmitHandEnd:
		metrics.RecordHandPlayed(l.tableID())
		metrics.ObservePotSize(l.tableID(), e.PotTotal)
		if l.pub != nil {
			l.pub.PublishHandEnd(l.Snapshot(), e.HandNumber)
		}
	case CheckGameStart:
		// The translation layer owns sit-out membership; its hook decides
		// whether to call StartHandNow once MinPlayersToStart eligible
		// seats are confirmed.
		if l.pub != nil {
			l.pub.PublishSnapshot(l.Snapshot(), "game-start-check")
		}
		if l.onCheckGameStart != nil {
			l.onCheckGameStart()
		}
	case EvaluateHands:
		l.evaluateAndPayout()
	}
}

func (l *Loop) evaluateAndPayout() {
	l.mu.Lock()
	table := l.table
	l.mu.Unlock()

	scores := map[int]int{}
	inHand := table.InHandSeats()
	if len(inHand) == 1 {
		// Fold-to-one: the lone contestant wins every pot they are
		// eligible for; there may not even be five cards to evaluate.
		scores[inHand[0]] = 0
	} else {
		for _, i := range inHand {
			s := table.Seats[i]
			if s.Hand == nil {
				continue
			}
			score, err := handeval.Evaluate(s.Hand[:], table.CommunityCards)
			if err != nil {
				l.logger.Printf("hand evaluation failed for seat %d: %v", i, err)
				continue
			}
			scores[i] = score
		}
	}
	l.Dispatch(Payout{Scores: scores})
}

// tableEqualByValue compares two tables field-by-field rather than with
// reflect.DeepEqual, since Clone always allocates fresh slices/maps even
// when their contents are identical.
func tableEqualByValue(a, b Table) bool {
	if a.Phase != b.Phase || a.Street != b.Street || a.HandNumber != b.HandNumber {
		return false
	}
	if a.CurrentBet != b.CurrentBet || a.LastRaiseSize != b.LastRaiseSize {
		return false
	}
	if !intPtrEqual(a.Actor, b.Actor) || !intPtrEqual(a.LastAggressor, b.LastAggressor) {
		return false
	}
	if len(a.CommunityCards) != len(b.CommunityCards) || len(a.Deck) != len(b.Deck) || a.DeckIndex != b.DeckIndex {
		return false
	}
	for i := range a.Seats {
		sa, sb := a.Seats[i], b.Seats[i]
		if sa.PlayerID != sb.PlayerID || sa.Chips != sb.Chips || sa.Committed != sb.Committed ||
			sa.StreetCommitted != sb.StreetCommitted || sa.Status != sb.Status ||
			sa.PendingRebuy != sb.PendingRebuy {
			return false
		}
	}
	if len(a.Pots) != len(b.Pots) {
		return false
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
