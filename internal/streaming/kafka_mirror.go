// Package streaming mirrors each table's append-only event log to Kafka,
// adapted from the platform's fraud-alert producer: same sarama
// configuration shape, repurposed to carry engine events instead of
// fraud alerts.
package streaming

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

// MirrorConfig configures the Kafka producer backing the event-log mirror.
type MirrorConfig struct {
	Brokers      []string
	Topic        string
	MaxRetries   int
	RetryBackoff time.Duration
	RequiredAcks sarama.RequiredAcks
	AsyncMode    bool
}

// EventRecord is the wire format for one mirrored table event.
type EventRecord struct {
	TableID    string          `json:"table_id"`
	HandNumber int             `json:"hand_number"`
	Sequence   int64           `json:"sequence"`
	EventType  string          `json:"event_type"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  time.Time       `json:"timestamp"`
}

// MirrorStats tracks producer health, mirroring the fraud producer's
// ProducerStats shape.
type MirrorStats struct {
	MessagesSent   int64
	MessagesFailed int64
	LastMessageTime time.Time
}

// EventLogMirror publishes engine events to Kafka in table order.
type EventLogMirror struct {
	producer sarama.SyncProducer
	async    sarama.AsyncProducer
	topic    string

	mu    sync.Mutex
	stats MirrorStats
}

// NewEventLogMirror builds a mirror; AsyncMode trades delivery
// confirmation for throughput, matching the fraud producer's own tradeoff.
func NewEventLogMirror(cfg MirrorConfig) (*EventLogMirror, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = !cfg.AsyncMode
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Retry.Max = cfg.MaxRetries
	saramaConfig.Producer.Retry.Backoff = cfg.RetryBackoff
	saramaConfig.Producer.RequiredAcks = cfg.RequiredAcks

	m := &EventLogMirror{topic: cfg.Topic}

	if cfg.AsyncMode {
		async, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
		if err != nil {
			return nil, fmt.Errorf("streaming: failed to create async producer: %w", err)
		}
		m.async = async
		go m.drainErrors()
		return m, nil
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("streaming: failed to create sync producer: %w", err)
	}
	m.producer = producer
	return m, nil
}

func (m *EventLogMirror) drainErrors() {
	for err := range m.async.Errors() {
		m.mu.Lock()
		m.stats.MessagesFailed++
		m.mu.Unlock()
		_ = err
	}
}

// Publish appends one event record to the mirrored log. It is safe to call
// from the event loop's goroutine directly: the sync path blocks until the
// broker acks, bounding how far the mirror can lag the table.
func (m *EventLogMirror) Publish(rec EventRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("streaming: marshal event record: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: m.topic,
		Key:   sarama.StringEncoder(rec.TableID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(rec.EventType)},
			{Key: []byte("hand_number"), Value: []byte(fmt.Sprintf("%d", rec.HandNumber))},
		},
		Timestamp: rec.Timestamp,
	}

	if m.async != nil {
		m.async.Input() <- msg
		return nil
	}

	_, _, err = m.producer.SendMessage(msg)
	m.mu.Lock()
	if err != nil {
		m.stats.MessagesFailed++
	} else {
		m.stats.MessagesSent++
		m.stats.LastMessageTime = time.Now()
	}
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("streaming: send event record: %w", err)
	}
	return nil
}

// Stats returns a snapshot of producer counters.
func (m *EventLogMirror) Stats() MirrorStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Close releases the underlying Kafka producer.
func (m *EventLogMirror) Close() error {
	if m.async != nil {
		return m.async.Close()
	}
	if m.producer != nil {
		return m.producer.Close()
	}
	return nil
}
