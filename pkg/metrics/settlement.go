package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records the outcomes of checkout settlement runs.
type SettlementMetrics struct {
	events      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	duplicates  prometheus.Counter
	stockFails  prometheus.Counter
	commissions *prometheus.CounterVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_events_total",
		Help: "Webhook events handled by the settlement processor.",
	}, []string{"event_type", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of settlement runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_duplicate_deliveries_total",
		Help: "Redelivered payment sessions skipped by the order dedup key.",
	})
	stockFails := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_stock_update_failures_total",
		Help: "Line items whose atomic stock decrement failed.",
	})
	commissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_commissions_recorded_total",
		Help: "Commission records persisted, by beneficiary party.",
	}, []string{"party"})
	reg.MustRegister(events, duration, duplicates, stockFails, commissions)
	return &SettlementMetrics{
		events:      events,
		duration:    duration,
		duplicates:  duplicates,
		stockFails:  stockFails,
		commissions: commissions,
	}
}

// ObserveEvent records one handled event with its outcome.
func (m *SettlementMetrics) ObserveEvent(eventType, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if m.events != nil {
		m.events.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
	}
	if m.duration != nil {
		m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
	}
}

// IncDuplicate counts a redelivered session rejected by the dedup key.
func (m *SettlementMetrics) IncDuplicate() {
	if m == nil || m.duplicates == nil {
		return
	}
	m.duplicates.Inc()
}

// IncStockFailure counts a failed per-item stock decrement.
func (m *SettlementMetrics) IncStockFailure() {
	if m == nil || m.stockFails == nil {
		return
	}
	m.stockFails.Inc()
}

// IncCommission counts a persisted commission row for the given party.
func (m *SettlementMetrics) IncCommission(party string) {
	if m == nil || m.commissions == nil {
		return
	}
	m.commissions.WithLabelValues(normalizeLabel(party)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
