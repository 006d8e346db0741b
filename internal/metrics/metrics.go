// Package metrics instruments the table engine with Prometheus metrics,
// following the same promauto registration style the platform's fraud
// package uses for its own detectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokertable_action_latency_seconds",
		Help:    "Time between an actor's action timer starting and the action landing",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	RoundDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokertable_round_duration_seconds",
		Help:    "Wall-clock duration of a betting round",
		Buckets: prometheus.DefBuckets,
	}, []string{"street"})

	TimeoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokertable_action_timeouts_total",
		Help: "Total number of action-timer expiries",
	}, []string{"table_id"})

	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pokertable_event_queue_depth",
		Help: "Current depth of a table's event queue",
	}, []string{"table_id"})

	PotSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokertable_pot_size_chips",
		Help:    "Distribution of final pot sizes at payout",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 20000, 100000},
	}, []string{"table_id"})

	HandsPlayedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokertable_hands_played_total",
		Help: "Total number of completed hands",
	}, []string{"table_id"})

	InvariantFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokertable_invariant_failures_total",
		Help: "Total number of post-reducer invariant violations forcing a hand end",
	}, []string{"table_id"})
)

// ObserveActionLatency records the time an actor took to respond, keyed by
// the action kind they eventually took.
func ObserveActionLatency(action string, d time.Duration) {
	ActionLatency.WithLabelValues(action).Observe(d.Seconds())
}

// ObserveRoundDuration records how long a betting round lasted.
func ObserveRoundDuration(street string, d time.Duration) {
	RoundDuration.WithLabelValues(street).Observe(d.Seconds())
}

// RecordTimeout increments the per-table timeout counter.
func RecordTimeout(tableID string) {
	TimeoutsTotal.WithLabelValues(tableID).Inc()
}

// SetQueueDepth reports a table's current event queue depth.
func SetQueueDepth(tableID string, depth int) {
	QueueDepth.WithLabelValues(tableID).Set(float64(depth))
}

// ObservePotSize records a completed hand's total pot size.
func ObservePotSize(tableID string, chips int64) {
	PotSize.WithLabelValues(tableID).Observe(float64(chips))
}

// RecordHandPlayed increments the per-table hands-played counter.
func RecordHandPlayed(tableID string) {
	HandsPlayedTotal.WithLabelValues(tableID).Inc()
}

// RecordInvariantFailure increments the per-table invariant-failure counter.
func RecordInvariantFailure(tableID string) {
	InvariantFailuresTotal.WithLabelValues(tableID).Inc()
}
