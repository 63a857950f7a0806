package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorderInterface abstracts metric recording so tests can use a no-op
type MetricsRecorderInterface interface {
	RecordMutation(operation, status string, duration time.Duration)
	RecordPendingResolution(outcome string)
	RecordSuggestion(band string)
	SetPendingDepth(count float64)
	RecordNotification()
}

// LedgerMetrics publishes ledger engine metrics to prometheus
type LedgerMetrics struct {
	mutationsTotal    *prometheus.CounterVec
	mutationDuration  prometheus.Histogram
	pendingResolution *prometheus.CounterVec
	suggestionsTotal  *prometheus.CounterVec
	pendingDepth      prometheus.Gauge
	notificationsSent prometheus.Counter
}

func NewLedgerMetrics() MetricsRecorderInterface {
	return &LedgerMetrics{
		mutationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_mutations_total",
				Help: "Total number of ledger mutation units by operation and status",
			},
			[]string{"operation", "status"},
		),
		mutationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledger_mutation_duration_milliseconds",
				Help:    "Ledger mutation unit duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		pendingResolution: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pending_transactions_resolved_total",
				Help: "Pending transaction resolutions by outcome",
			},
			[]string{"outcome"},
		),
		suggestionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "category_suggestions_total",
				Help: "Category suggestions served by confidence band",
			},
			[]string{"band"},
		),
		pendingDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pending_transactions_depth",
				Help: "Current number of unresolved pending transactions",
			},
		),
		notificationsSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "change_notifications_total",
				Help: "Total snapshot-changed notifications broadcast",
			},
		),
	}
}

func (m *LedgerMetrics) RecordMutation(operation, status string, duration time.Duration) {
	m.mutationsTotal.WithLabelValues(operation, status).Inc()
	m.mutationDuration.Observe(float64(duration.Milliseconds()))
}

func (m *LedgerMetrics) RecordPendingResolution(outcome string) {
	m.pendingResolution.WithLabelValues(outcome).Inc()
}

func (m *LedgerMetrics) RecordSuggestion(band string) {
	m.suggestionsTotal.WithLabelValues(band).Inc()
}

func (m *LedgerMetrics) SetPendingDepth(count float64) {
	m.pendingDepth.Set(count)
}

func (m *LedgerMetrics) RecordNotification() {
	m.notificationsSent.Inc()
}

// NoopMetrics discards every recording, used in tests
type NoopMetrics struct{}

func NewNoopMetrics() MetricsRecorderInterface { return &NoopMetrics{} }

func (m *NoopMetrics) RecordMutation(string, string, time.Duration) {}
func (m *NoopMetrics) RecordPendingResolution(string)               {}
func (m *NoopMetrics) RecordSuggestion(string)                      {}
func (m *NoopMetrics) SetPendingDepth(float64)                      {}
func (m *NoopMetrics) RecordNotification()                          {}
