package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseConfig mirrors the platform's analytics connection shape.
type ClickHouseConfig struct {
	Host         string
	Port         int
	Database     string
	Username     string
	Password     string
	Secure       bool
	MaxOpenConns int
	MaxIdleConns int
	ConnTimeout  time.Duration
}

// HandHistoryEvent is one row of hand-history analytics: a completed
// hand's showdown outcome, for post-hoc review and reporting.
type HandHistoryEvent struct {
	TableID       string
	HandNumber    int
	PlayerID      string
	SeatNumber    int32
	StartingChips int64
	EndingChips   int64
	NetResult     int64
	TotalPot      int64
	StreetReached string
	HandScore     int32
	Won           bool
	Timestamp     time.Time
}

// HandHistoryStore is a ClickHouse-backed hand-history analytics
// repository, adapted from the platform's own ClickHouse analytics layer.
type HandHistoryStore struct {
	db clickhouse.Conn
}

// NewHandHistoryStore opens a ClickHouse connection.
func NewHandHistoryStore(ctx context.Context, cfg ClickHouseConfig) (*HandHistoryStore, error) {
	opts := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	}
	if cfg.Secure {
		opts.TLS = &tls.Config{}
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: connect to clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("storage: ping clickhouse: %w", err)
	}
	return &HandHistoryStore{db: conn}, nil
}

// CreateTables creates the hand-history analytics table if absent.
func (h *HandHistoryStore) CreateTables(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS hand_history (
			table_id String,
			hand_number UInt64,
			player_id String,
			seat_number Int32,
			starting_chips Int64,
			ending_chips Int64,
			net_result Int64,
			total_pot Int64,
			street_reached String,
			hand_score Int32,
			won Bool,
			timestamp DateTime64(3)
		) ENGINE = ReplacingMergeTree(timestamp)
		ORDER BY (table_id, hand_number, player_id)
	`
	if err := h.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("storage: create hand_history table: %w", err)
	}
	return nil
}

// RecordHand inserts one seat's outcome for a completed hand.
func (h *HandHistoryStore) RecordHand(ctx context.Context, e HandHistoryEvent) error {
	const query = `
		INSERT INTO hand_history (
			table_id, hand_number, player_id, seat_number,
			starting_chips, ending_chips, net_result, total_pot,
			street_reached, hand_score, won, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return h.db.Exec(ctx, query,
		e.TableID, e.HandNumber, e.PlayerID, e.SeatNumber,
		e.StartingChips, e.EndingChips, e.NetResult, e.TotalPot,
		e.StreetReached, e.HandScore, e.Won, e.Timestamp,
	)
}

// Close releases the underlying connection.
func (h *HandHistoryStore) Close() error {
	return h.db.Close()
}
