// Command tableserver exposes the poker table engine over websockets: it
// translates client commands into engine events, fans table snapshots and
// events back out to subscribers, and wires the optional event-log mirror
// and analytics stores.
package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pokertable/internal/engine"
	"pokertable/internal/sitout"
	"pokertable/internal/storage"
	"pokertable/internal/streaming"
	"pokertable/pkg/rng"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Server manages websocket connections and the per-table hub registry.
type Server struct {
	mu     sync.RWMutex
	tables map[string]*tableHub
	deps   hubDeps
}

func NewServer() (*Server, error) {
	random, err := rng.NewSystem()
	if err != nil {
		return nil, err
	}

	deps := hubDeps{
		cfg:    engine.ConfigFromEnv(),
		random: random,
		audit:  rng.NewAuditLogger(nil),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		mirror, err := streaming.NewEventLogMirror(streaming.MirrorConfig{
			Brokers:      strings.Split(brokers, ","),
			Topic:        getenv("KAFKA_EVENT_TOPIC", "poker-table-events"),
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			AsyncMode:    true,
		})
		if err != nil {
			log.Printf("tableserver: kafka mirror disabled: %v", err)
		} else {
			deps.mirror = mirror
		}
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.Printf("tableserver: event log store disabled: %v", err)
		} else {
			store := storage.NewEventLogStore(db)
			if err := store.CreateSchema(context.Background()); err != nil {
				log.Printf("tableserver: event log schema: %v", err)
			}
			deps.eventStore = store
		}
	}

	if host := os.Getenv("CLICKHOUSE_HOST"); host != "" {
		port, _ := strconv.Atoi(getenv("CLICKHOUSE_PORT", "9000"))
		history, err := storage.NewHandHistoryStore(context.Background(), storage.ClickHouseConfig{
			Host:     host,
			Port:     port,
			Database: getenv("CLICKHOUSE_DB", "poker"),
			Username: getenv("CLICKHOUSE_USER", "default"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
			Secure:   os.Getenv("CLICKHOUSE_SECURE") == "true",
		})
		if err != nil {
			log.Printf("tableserver: hand history store disabled: %v", err)
		} else {
			if err := history.CreateTables(context.Background()); err != nil {
				log.Printf("tableserver: hand history schema: %v", err)
			}
			deps.history = history
		}
	}

	return &Server{tables: map[string]*tableHub{}, deps: deps}, nil
}

func (s *Server) getOrCreateTable(tableID string) *tableHub {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hub, ok := s.tables[tableID]; ok {
		return hub
	}
	sb := envInt64("SMALL_BLIND", 5)
	bb := envInt64("BIG_BLIND", 10)
	hub := newTableHub(tableID, sb, bb, s.deps)
	s.tables[tableID] = hub
	return hub
}

func (s *Server) lookupTable(tableID string) *tableHub {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[tableID]
}

func (s *Server) tableIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	return ids
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("tableserver: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	sub := &subscriber{conn: conn}
	var hub *tableHub
	defer func() {
		if hub != nil {
			hub.unsubscribe(sub)
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("tableserver: websocket error: %v", err)
			}
			return
		}

		var cmd clientCommand
		dec := json.NewDecoder(bytes.NewReader(message))
		dec.UseNumber()
		if err := dec.Decode(&cmd); err != nil {
			sub.send(errorMsg("", codeBadJSON, "malformed command"))
			continue
		}
		hub = s.handleCommand(sub, hub, cmd)
	}
}

// handleCommand translates one client command into engine events (or an
// immediate ERROR), returning the hub the connection is now attached to.
func (s *Server) handleCommand(sub *subscriber, hub *tableHub, cmd clientCommand) *tableHub {
	switch cmd.Type {
	case "ATTACH":
		sub.mu.Lock()
		sub.playerID = cmd.UserID
		sub.mu.Unlock()
		sub.send(eventMsg("SESSION", map[string]interface{}{
			"cmdId":  cmd.CmdID,
			"userId": cmd.UserID,
		}))

	case "REATTACH":
		// Session rebinding lives in the transport collaborator; answering
		// with a fresh snapshot is all the engine owes a reconnect.
		if hub != nil {
			sub.send(eventMsg("TABLE_SNAPSHOT", map[string]interface{}{
				"reason":   "reattach",
				"snapshot": buildSnapshot(hub.loop.Snapshot(), hub.sitout, sub.playerID),
			}))
		}

	case "LIST_TABLES":
		sub.send(eventMsg("TABLE_LIST", map[string]interface{}{
			"cmdId":  cmd.CmdID,
			"tables": s.tableIDs(),
		}))

	case "CREATE_TABLE":
		name := cmd.Name
		if name == "" {
			sub.send(errorMsg(cmd.CmdID, codeUnknownCommand, "table name required"))
			return hub
		}
		s.getOrCreateTable(name)
		sub.send(eventMsg("TABLE_CREATED", map[string]interface{}{
			"cmdId":   cmd.CmdID,
			"tableId": name,
		}))

	case "JOIN_TABLE":
		if hub != nil {
			hub.unsubscribe(sub)
		}
		hub = s.getOrCreateTable(cmd.TableID)
		hub.subscribe(sub)

	case "SIT":
		return s.handleSit(sub, hub, cmd)

	case "LEAVE":
		if hub == nil {
			sub.send(errorMsg(cmd.CmdID, codeSeatingFailed, "not at a table"))
			return hub
		}
		snap := hub.loop.Snapshot()
		seat := snap.SeatOf(sub.playerID)
		if seat < 0 {
			sub.send(errorMsg(cmd.CmdID, codeSeatingFailed, "not seated"))
			return hub
		}
		hub.sitout.HandlePlayerLeave(sub.playerID)
		hub.loop.Dispatch(engine.PlayerLeave{Seat: seat})
		hub.broadcast(eventMsg("PLAYER_LEFT", map[string]interface{}{
			"seat":     seat,
			"playerId": sub.playerID,
		}))

	case "SIT_OUT":
		if hub == nil {
			return hub
		}
		snap := hub.loop.Snapshot()
		seat := snap.SeatOf(sub.playerID)
		if seat < 0 {
			return hub
		}
		hub.sitout.MarkSitOut(sub.playerID, seat, sitout.ReasonVoluntary)
		hub.loop.Dispatch(engine.PlayerSitOut{Seat: seat})
		hub.broadcast(eventMsg("PLAYER_SAT_OUT", map[string]interface{}{
			"seat":     seat,
			"playerId": sub.playerID,
			"reason":   "voluntary",
		}))

	case "SIT_IN":
		if hub == nil {
			return hub
		}
		snap := hub.loop.Snapshot()
		seat := snap.SeatOf(sub.playerID)
		if seat < 0 {
			return hub
		}
		hub.sitout.MarkSitIn(sub.playerID)
		hub.loop.Dispatch(engine.PlayerSitIn{Seat: seat})
		hub.broadcast(eventMsg("PLAYER_SAT_IN", map[string]interface{}{
			"seat":     seat,
			"playerId": sub.playerID,
		}))

	case "ACTION":
		return s.handleAction(sub, hub, cmd)

	case "REBUY":
		if hub == nil {
			sub.send(errorMsg(cmd.CmdID, codeRebuyFailed, "not at a table"))
			return hub
		}
		amount, ok := chipAmount(cmd.Amount)
		if !ok || amount == 0 {
			sub.send(errorMsg(cmd.CmdID, codeRebuyFailed, "invalid amount"))
			return hub
		}
		snap := hub.loop.Snapshot()
		seat := snap.SeatOf(sub.playerID)
		if seat < 0 {
			sub.send(errorMsg(cmd.CmdID, codeRebuyFailed, "not seated"))
			return hub
		}
		hub.loop.Dispatch(engine.PlayerRebuy{Seat: seat, Amount: amount})

	case "POST_BLIND":
		// Reserved by the protocol; blinds are posted by the engine.

	default:
		sub.send(errorMsg(cmd.CmdID, codeUnknownCommand, "unrecognised command type"))
	}
	return hub
}

func (s *Server) handleSit(sub *subscriber, hub *tableHub, cmd clientCommand) *tableHub {
	if cmd.TableID != "" {
		if hub != nil && hub.id != cmd.TableID {
			hub.unsubscribe(sub)
			hub = nil
		}
		if hub == nil {
			hub = s.getOrCreateTable(cmd.TableID)
			hub.subscribe(sub)
		}
	}
	if hub == nil {
		sub.send(errorMsg(cmd.CmdID, codeSeatingFailed, "no table"))
		return hub
	}

	playerID := cmd.PlayerID
	if playerID == "" {
		playerID = sub.playerID
	}
	if playerID == "" {
		sub.send(errorMsg(cmd.CmdID, codeSeatingFailed, "attach first"))
		return hub
	}
	if cmd.Seat == nil || *cmd.Seat < 0 || *cmd.Seat >= engine.NumSeats {
		sub.send(errorMsg(cmd.CmdID, codeInvalidSeat, "seat out of range"))
		return hub
	}
	buyIn, ok := chipAmount(cmd.BuyIn)
	if !ok {
		sub.send(errorMsg(cmd.CmdID, codeInvalidBuyIn, "buy-in must be a whole chip amount"))
		return hub
	}

	snap := hub.loop.Snapshot()
	if snap.Seats[*cmd.Seat].Occupied() {
		sub.send(errorMsg(cmd.CmdID, codeSeatTaken, "seat occupied"))
		return hub
	}
	if buyIn < snap.BuyInMin || buyIn > snap.BuyInMax {
		sub.send(errorMsg(cmd.CmdID, codeInvalidBuyIn, "buy-in out of bounds"))
		return hub
	}

	sub.mu.Lock()
	sub.playerID = playerID
	sub.mu.Unlock()

	hub.loop.Dispatch(engine.PlayerJoin{
		Seat:     *cmd.Seat,
		PlayerID: playerID,
		Nickname: cmd.Name,
		Chips:    buyIn,
	})
	hub.broadcast(eventMsg("PLAYER_JOINED", map[string]interface{}{
		"seat":     *cmd.Seat,
		"playerId": playerID,
	}))
	return hub
}

func (s *Server) handleAction(sub *subscriber, hub *tableHub, cmd clientCommand) *tableHub {
	if hub == nil {
		sub.send(errorMsg(cmd.CmdID, codeActionFailed, "not at a table"))
		return hub
	}
	kind, ok := parseActionKind(cmd.Action)
	if !ok {
		sub.send(errorMsg(cmd.CmdID, codeActionFailed, "unknown action"))
		return hub
	}
	amount, ok := chipAmount(cmd.Amount)
	if !ok {
		sub.send(errorMsg(cmd.CmdID, codeActionFailed, "amount must be a whole chip amount"))
		return hub
	}

	playerID := cmd.PlayerID
	if playerID == "" {
		playerID = sub.playerID
	}
	snap := hub.loop.Snapshot()
	seat := snap.SeatOf(playerID)
	if seat < 0 {
		sub.send(errorMsg(cmd.CmdID, codeActionFailed, "not seated"))
		return hub
	}
	if snap.Actor == nil || *snap.Actor != seat {
		sub.send(errorMsg(cmd.CmdID, codeActionFailed, "not your turn"))
		return hub
	}

	// Acting voluntarily breaks any consecutive-timeout streak, and the
	// actor's clock stops before the reducer runs.
	hub.sitout.ResetTimeouts(playerID)
	hub.actions.StopAction(seat)

	hub.observeActionLatency(kind.String())
	hub.loop.Dispatch(engine.Action{Seat: seat, Kind: kind, Amount: amount})
	hub.broadcast(eventMsg("PLAYER_ACTION_APPLIED", map[string]interface{}{
		"seat":   seat,
		"action": kind.String(),
		"amount": amount,
	}))
	return hub
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func main() {
	server, err := NewServer()
	if err != nil {
		log.Fatalf("tableserver: failed to create server: %v", err)
	}

	if server.deps.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// WebSocket endpoint for game tables
	router.GET("/ws", server.handleWebSocket)

	// REST API for table management
	router.GET("/api/tables", func(c *gin.Context) {
		c.JSON(200, gin.H{"tables": server.tableIDs()})
	})

	router.GET("/api/tables/:tableId", func(c *gin.Context) {
		hub := server.lookupTable(c.Param("tableId"))
		if hub == nil {
			c.JSON(404, gin.H{"error": "Table not found"})
			return
		}
		c.JSON(200, buildSnapshot(hub.loop.Snapshot(), hub.sitout, ""))
	})

	router.POST("/api/tables", func(c *gin.Context) {
		var req struct {
			TableID string `json:"tableId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.TableID == "" {
			c.JSON(400, gin.H{"error": "Invalid request"})
			return
		}
		server.getOrCreateTable(req.TableID)
		c.JSON(201, gin.H{"tableId": req.TableID})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("tableserver: shutting down")
		server.mu.Lock()
		for _, hub := range server.tables {
			hub.shutdown()
		}
		server.mu.Unlock()
		os.Exit(0)
	}()

	port := getenv("GAME_SERVER_PORT", "3002")
	log.Printf("tableserver: starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("tableserver: failed to start: %v", err)
	}
}
