package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for TxMetrics.ObserveDuration.
const (
	OutcomeCommitted = "committed"
	OutcomeFailed    = "failed"
	OutcomeExhausted = "exhausted"
)

// TxMetrics tracks review-store transactions per operation.
// A nil *TxMetrics is valid and records nothing.
type TxMetrics struct {
	attempts  *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	exhausted *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewTxMetrics(reg prometheus.Registerer) *TxMetrics {
	m := &TxMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_tx_attempts_total",
			Help: "Review store transaction attempts, including retries.",
		}, []string{"operation"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_tx_conflicts_total",
			Help: "Review store transaction attempts that lost a write race.",
		}, []string{"operation"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_tx_retry_exhausted_total",
			Help: "Review store operations that gave up after the last retry.",
		}, []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "review_tx_duration_seconds",
			Help:    "Wall time of a review store operation across all attempts.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
	}

	reg.MustRegister(m.attempts, m.conflicts, m.exhausted, m.duration)
	return m
}

func (m *TxMetrics) ObserveAttempt(operation string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(operation).Inc()
}

func (m *TxMetrics) ObserveConflict(operation string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(operation).Inc()
}

func (m *TxMetrics) ObserveExhausted(operation string) {
	if m == nil {
		return
	}
	m.exhausted.WithLabelValues(operation).Inc()
}

func (m *TxMetrics) ObserveDuration(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation, outcome).Observe(d.Seconds())
}
