package main

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pokertable/internal/engine"
	"pokertable/internal/metrics"
	"pokertable/internal/sitout"
	"pokertable/internal/storage"
	"pokertable/internal/streaming"
	"pokertable/internal/timers"
	"pokertable/pkg/cards"
	"pokertable/pkg/rng"
)

// subscriber is one websocket connection attached to a table.
type subscriber struct {
	conn     *websocket.Conn
	mu       sync.Mutex
	playerID string
}

func (s *subscriber) player() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID
}

func (s *subscriber) send(v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(v); err != nil {
		log.Printf("tableserver: write failed: %v", err)
	}
}

// tableHub bundles one table's event loop with its controllers and its
// subscriber set. It is the translation layer between the wire protocol
// and engine events, and it implements the engine's Publisher, the timer
// manager's Dispatcher, the sit-out controller's LeaveDispatcher, and the
// loop's EventSink.
type tableHub struct {
	id   string
	cfg  engine.Config
	loop *engine.Loop

	sitout     *sitout.Controller
	actions    *timers.ActionManager
	countdowns *timers.CountdownManager

	random *rng.System
	audit  *rng.AuditLogger

	mirror     *streaming.EventLogMirror
	eventStore *storage.EventLogStore
	history    *storage.HandHistoryStore

	mu               sync.Mutex
	subs             map[*subscriber]bool
	gameStartPending bool
	auditedHand      int
	startingChips    map[string]int64
	lastState        engine.Table
	lastPromptAt     time.Time
	streetStartedAt  time.Time
}

type hubDeps struct {
	cfg        engine.Config
	random     *rng.System
	audit      *rng.AuditLogger
	mirror     *streaming.EventLogMirror
	eventStore *storage.EventLogStore
	history    *storage.HandHistoryStore
}

func newTableHub(id string, sb, bb int64, deps hubDeps) *tableHub {
	h := &tableHub{
		id:            id,
		cfg:           deps.cfg,
		random:        deps.random,
		audit:         deps.audit,
		mirror:        deps.mirror,
		eventStore:    deps.eventStore,
		history:       deps.history,
		subs:          map[*subscriber]bool{},
		startingChips: map[string]int64{},
	}
	h.sitout = sitout.NewController(deps.cfg.AutoLeaveAfter, h)
	h.actions = timers.NewActionManager(h)
	h.countdowns = timers.NewCountdownManager(deps.cfg.CountdownGCInterval, deps.cfg.CountdownGraceWindow)

	table := engine.NewTable(id, sb, bb, 0, deps.cfg)
	h.lastState = table.Clone()
	h.loop = engine.NewLoop(table, deps.cfg, h.actions, h, h, h.seed)
	h.loop.SetGameStartHook(h.checkGameStart)
	h.loop.SetEventSink(h)
	go h.loop.Run()
	return h
}

// seed supplies the (deckSeed, timestamp) pair for the next StartHand.
func (h *tableHub) seed() (string, int64) {
	ts := time.Now().UnixMilli()
	next := h.loop.Snapshot().HandNumber + 1
	return cards.Seed(next, ts, h.random.SeedSuffix()), ts
}

func (h *tableHub) subscribe(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = true
	h.mu.Unlock()
	s.send(eventMsg("TABLE_SNAPSHOT", map[string]interface{}{
		"reason":   "subscribe",
		"snapshot": buildSnapshot(h.loop.Snapshot(), h.sitout, s.player()),
	}))
}

func (h *tableHub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

func (h *tableHub) subscribers() []*subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		out = append(out, s)
	}
	return out
}

func (h *tableHub) broadcast(msg map[string]interface{}) {
	for _, s := range h.subscribers() {
		s.send(msg)
	}
}

// Start implements engine.CountdownSink.
func (h *tableHub) Start(kind string, d time.Duration) {
	h.countdowns.Start(kind, d)
	h.broadcast(countdownMsg(kind, time.Now(), d))
}

// Clear implements engine.CountdownSink.
func (h *tableHub) Clear(kind string) {
	h.countdowns.Clear(kind)
}

// PublishSnapshot implements engine.Publisher: every subscriber gets a
// viewer-personalised snapshot, plus an action prompt when a seat is on
// the clock. Deal/round/showdown/winner notifications are derived by
// diffing against the previously published state.
func (h *tableHub) PublishSnapshot(t engine.Table, reason string) {
	h.mu.Lock()
	prev := h.lastState
	h.lastState = t
	h.mu.Unlock()

	h.maybeAuditHand(t)
	h.emitTransitions(prev, t)
	if reason == "uncalled" {
		h.broadcast(eventMsg("DEALER_MESSAGE", map[string]interface{}{
			"msg": "uncalled bet returned",
		}))
	}
	for _, s := range h.subscribers() {
		s.send(eventMsg("TABLE_SNAPSHOT", map[string]interface{}{
			"reason":   reason,
			"snapshot": buildSnapshot(t, h.sitout, s.player()),
		}))
	}
	if t.Actor != nil {
		h.mu.Lock()
		h.lastPromptAt = time.Now()
		h.mu.Unlock()
		h.broadcast(eventMsg("ACTION_PROMPT", map[string]interface{}{
			"actingIndex": *t.Actor,
			"betToCall":   t.ToCall(*t.Actor),
			"minRaise":    t.LastRaiseSize,
			"timeLeftMs":  h.cfg.ActionTimeout.Milliseconds(),
		}))
	}
}

// emitTransitions derives the discrete table notifications from two
// consecutive published states.
func (h *tableHub) emitTransitions(prev, cur engine.Table) {
	if prev.BBSeat < 0 && cur.BBSeat >= 0 {
		h.broadcast(eventMsg("BLINDS_POSTED", map[string]interface{}{
			"bbSeat":     cur.BBSeat,
			"smallBlind": cur.SmallBlind,
			"bigBlind":   cur.BigBlind,
		}))
	}

	if len(cur.CommunityCards) > len(prev.CommunityCards) {
		ids := make([]int, 0, len(cur.CommunityCards)-len(prev.CommunityCards))
		for _, c := range cur.CommunityCards[len(prev.CommunityCards):] {
			ids = append(ids, c.ID())
		}
		switch len(cur.CommunityCards) {
		case 3:
			h.broadcast(eventMsg("DEAL_FLOP", map[string]interface{}{"cards": ids}))
		case 4:
			h.broadcast(eventMsg("DEAL_TURN", map[string]interface{}{"card": ids[0]}))
		case 5:
			h.broadcast(eventMsg("DEAL_RIVER", map[string]interface{}{"card": ids[0]}))
		}
	}

	if prev.Street != cur.Street {
		h.mu.Lock()
		started := h.streetStartedAt
		h.streetStartedAt = time.Now()
		h.mu.Unlock()
		if prev.Street != engine.StreetNone {
			if !started.IsZero() {
				metrics.ObserveRoundDuration(prev.Street.String(), time.Since(started))
			}
			if cur.Street != engine.StreetNone {
				h.broadcast(eventMsg("ROUND_END", map[string]interface{}{
					"street": prev.Street.String(),
				}))
			}
		}
	}

	if cur.Phase == engine.PhaseShowdown && prev.Phase != engine.PhaseShowdown {
		h.broadcast(eventMsg("SHOWDOWN", map[string]interface{}{
			"revealOrder": cur.InHandSeats(),
		}))
	}

	if cur.Phase == engine.PhaseHandEnd && prev.Phase != engine.PhaseHandEnd {
		var winners []int
		for i := range cur.Seats {
			if cur.Seats[i].Chips > prev.Seats[i].Chips {
				winners = append(winners, i)
			}
		}
		h.broadcast(eventMsg("WINNER_ANNOUNCEMENT", map[string]interface{}{
			"winners":   winners,
			"potAmount": prev.PotTotal(),
		}))
	}
}

// maybeAuditHand records the shuffle audit entry and deck commitment the
// first time a new hand's state is published.
func (h *tableHub) maybeAuditHand(t engine.Table) {
	h.mu.Lock()
	isNew := t.DeckSeed != "" && t.HandNumber > h.auditedHand
	if isNew {
		h.auditedHand = t.HandNumber
		h.startingChips = map[string]int64{}
		for _, s := range t.Seats {
			if s.Occupied() {
				h.startingChips[s.PlayerID] = s.Chips + s.Committed
			}
		}
	}
	h.mu.Unlock()
	if !isNew {
		return
	}

	commitment := cards.Commit(t.Deck)
	h.audit.LogShuffleEvent(rng.NewShuffleAuditEvent(t.TableID, t.HandNumber, t.DeckSeed, commitment))
	if h.eventStore != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.eventStore.RecordCommitment(ctx, storage.HandCommitment{
			TableID:    t.TableID,
			HandNumber: t.HandNumber,
			DeckSeed:   t.DeckSeed,
			Commitment: commitment,
			RecordedAt: time.Now(),
		}); err != nil {
			log.Printf("tableserver: record commitment: %v", err)
		}
	}
	h.broadcast(eventMsg("HAND_START", map[string]interface{}{
		"handNumber": t.HandNumber,
		"button":     t.ButtonIndex,
		"commitment": commitment,
	}))
}

// PublishHandEnd implements engine.Publisher.
func (h *tableHub) PublishHandEnd(t engine.Table, handNumber int) {
	h.broadcast(eventMsg("HAND_END", map[string]interface{}{
		"handNumber": handNumber,
	}))
	if h.history == nil {
		return
	}

	h.mu.Lock()
	baseline := h.startingChips
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, s := range t.Seats {
		if !s.Occupied() {
			continue
		}
		start, ok := baseline[s.PlayerID]
		if !ok {
			continue
		}
		row := storage.HandHistoryEvent{
			TableID:       t.TableID,
			HandNumber:    handNumber,
			PlayerID:      s.PlayerID,
			SeatNumber:    int32(s.ID),
			StartingChips: start,
			EndingChips:   s.Chips,
			NetResult:     s.Chips - start,
			StreetReached: t.Street.String(),
			Won:           s.Chips > start,
			Timestamp:     time.Now(),
		}
		if err := h.history.RecordHand(ctx, row); err != nil {
			log.Printf("tableserver: record hand history: %v", err)
		}
	}
}

// OnEventApplied implements engine.EventSink: each applied event goes to
// the Kafka mirror and the Postgres event log, in table order.
func (h *tableHub) OnEventApplied(tableID string, handNumber int, seq int64, ev engine.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("tableserver: marshal event %s: %v", ev.EventType(), err)
		return
	}
	now := time.Now()
	if h.mirror != nil {
		rec := streaming.EventRecord{
			TableID:    tableID,
			HandNumber: handNumber,
			Sequence:   seq,
			EventType:  ev.EventType(),
			Payload:    payload,
			Timestamp:  now,
		}
		if err := h.mirror.Publish(rec); err != nil {
			log.Printf("tableserver: mirror event: %v", err)
		}
	}
	if h.eventStore != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entry := storage.EventLogEntry{
			TableID:    tableID,
			HandNumber: handNumber,
			Sequence:   seq,
			EventType:  ev.EventType(),
			Payload:    payload,
			RecordedAt: now,
		}
		if err := h.eventStore.AppendEvent(ctx, entry); err != nil {
			log.Printf("tableserver: append event log: %v", err)
		}
	}
}

// observeActionLatency records how long the acting seat took to respond,
// measured from the last action prompt.
func (h *tableHub) observeActionLatency(action string) {
	h.mu.Lock()
	at := h.lastPromptAt
	h.mu.Unlock()
	if !at.IsZero() {
		metrics.ObserveActionLatency(action, time.Since(at))
	}
}

// DispatchTimeoutAutoFold implements timers.Dispatcher: the action clock
// expired for seat.
func (h *tableHub) DispatchTimeoutAutoFold(seat int) {
	snap := h.loop.Snapshot()
	if snap.Actor == nil || *snap.Actor != seat {
		return
	}
	playerID := snap.Seats[seat].PlayerID

	h.loop.Dispatch(engine.TimeoutAutoFold{Seat: seat})
	metrics.RecordTimeout(h.id)

	if playerID == "" {
		return
	}
	h.sitout.HandleTimeout(playerID, seat, h.cfg.MaxTimeouts)
	if h.sitout.IsSittingOut(playerID) {
		h.loop.Dispatch(engine.PlayerSitOut{Seat: seat})
		h.broadcast(eventMsg("PLAYER_SAT_OUT", map[string]interface{}{
			"seat":     seat,
			"playerId": playerID,
			"reason":   "timeout",
		}))
	}
}

// DispatchPlayerLeave implements sitout.LeaveDispatcher: the auto-leave
// fuse burned down.
func (h *tableHub) DispatchPlayerLeave(seat int) {
	snap := h.loop.Snapshot()
	playerID := snap.Seats[seat].PlayerID
	h.loop.Dispatch(engine.PlayerLeave{Seat: seat})
	h.broadcast(eventMsg("PLAYER_LEFT", map[string]interface{}{
		"seat":     seat,
		"playerId": playerID,
		"reason":   "auto_leave",
	}))
}

// checkGameStart is the loop's CHECK_GAME_START hook: once enough eligible
// seats are present and the table is idle, run the game-start countdown
// and then dispatch StartHand.
func (h *tableHub) checkGameStart() {
	snap := h.loop.Snapshot()
	if snap.Phase != engine.PhaseWaiting {
		return
	}
	eligible := 0
	for _, s := range snap.Seats {
		if s.Occupied() && s.Chips > 0 && !h.sitout.IsSittingOut(s.PlayerID) {
			eligible++
		}
	}
	if eligible < h.cfg.MinPlayersToStart {
		return
	}

	h.mu.Lock()
	if h.gameStartPending {
		h.mu.Unlock()
		return
	}
	h.gameStartPending = true
	h.mu.Unlock()

	h.Start(string(timers.CountdownGameStart), h.cfg.GameStartCountdown)
	time.AfterFunc(h.cfg.GameStartCountdown, func() {
		h.mu.Lock()
		h.gameStartPending = false
		h.mu.Unlock()
		h.Clear(string(timers.CountdownGameStart))
		h.loop.StartHandNow(h.sitout.SittingOutSeats())
	})
}

func (h *tableHub) shutdown() {
	h.loop.Stop()
	h.countdowns.Stop()
}
