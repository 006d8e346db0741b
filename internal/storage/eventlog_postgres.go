// Package storage persists the optional, pluggable pieces the table
// engine names but does not require: the per-table append-only event log
// and each hand's deck commitment, plus hand-history analytics. The
// Postgres layer below follows the same database/sql + lib/pq style the
// platform's session storage uses.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// EventLogEntry is one row of a table's append-only event log, sufficient
// to replay a table from an empty state via pure reducer application.
type EventLogEntry struct {
	TableID    string
	HandNumber int
	Sequence   int64
	EventType  string
	Payload    json.RawMessage
	RecordedAt time.Time
}

// HandCommitment records a hand's deck seed and its SHA-256 commitment,
// published at hand start so a dispute can verify the deck was not altered
// after the fact.
type HandCommitment struct {
	TableID    string
	HandNumber int
	DeckSeed   string
	Commitment string
	RecordedAt time.Time
}

// EventLogStore is a Postgres-backed event log and commitment store.
type EventLogStore struct {
	db *sql.DB
}

// NewEventLogStore wraps an existing *sql.DB (opened with "postgres" via
// lib/pq) as an EventLogStore.
func NewEventLogStore(db *sql.DB) *EventLogStore {
	return &EventLogStore{db: db}
}

// CreateSchema creates the event log and commitment tables if absent.
func (s *EventLogStore) CreateSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS table_event_log (
			table_id TEXT NOT NULL,
			hand_number INTEGER NOT NULL,
			sequence BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (table_id, hand_number, sequence)
		)`,
		`CREATE TABLE IF NOT EXISTS hand_commitments (
			table_id TEXT NOT NULL,
			hand_number INTEGER NOT NULL,
			deck_seed TEXT NOT NULL,
			commitment TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (table_id, hand_number)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("storage: create schema: %w", err)
		}
	}
	return nil
}

// AppendEvent persists one event-log entry.
func (s *EventLogStore) AppendEvent(ctx context.Context, e EventLogEntry) error {
	const query = `
		INSERT INTO table_event_log (table_id, hand_number, sequence, event_type, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (table_id, hand_number, sequence) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, e.TableID, e.HandNumber, e.Sequence, e.EventType, e.Payload, e.RecordedAt)
	if err != nil {
		return fmt.Errorf("storage: append event: %w", err)
	}
	return nil
}

// ReplayLog returns every event-log entry for a table in application
// order, for reconstructing table state via pure reducer replay.
func (s *EventLogStore) ReplayLog(ctx context.Context, tableID string) ([]EventLogEntry, error) {
	const query = `
		SELECT table_id, hand_number, sequence, event_type, payload, recorded_at
		FROM table_event_log
		WHERE table_id = $1
		ORDER BY hand_number, sequence
	`
	rows, err := s.db.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, fmt.Errorf("storage: replay log: %w", err)
	}
	defer rows.Close()

	var out []EventLogEntry
	for rows.Next() {
		var e EventLogEntry
		if err := rows.Scan(&e.TableID, &e.HandNumber, &e.Sequence, &e.EventType, &e.Payload, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("storage: scan event log row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecordCommitment persists a hand's deck seed and commitment hash.
func (s *EventLogStore) RecordCommitment(ctx context.Context, c HandCommitment) error {
	const query = `
		INSERT INTO hand_commitments (table_id, hand_number, deck_seed, commitment, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (table_id, hand_number) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, c.TableID, c.HandNumber, c.DeckSeed, c.Commitment, c.RecordedAt)
	if err != nil {
		return fmt.Errorf("storage: record commitment: %w", err)
	}
	return nil
}
