package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSettlementMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSettlementMetrics(reg)

	m.ObserveEvent("checkout.session.completed", "complete", 120*time.Millisecond)
	m.IncDuplicate()
	m.IncStockFailure()
	m.IncCommission("supplier")
	m.IncCommission("influencer")
	m.IncCommission("influencer")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "settlement_commissions_recorded_total", "party", "influencer"); err != nil {
		t.Fatalf("fetch influencer commissions: %v", err)
	} else if got != 2 {
		t.Fatalf("expected influencer commissions=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "settlement_events_total", "outcome", "complete"); err != nil {
		t.Fatalf("fetch events: %v", err)
	} else if got != 1 {
		t.Fatalf("expected events=1, got %f", got)
	}

	if mf := findMetricFamily(mfs, "settlement_duplicate_deliveries_total"); mf == nil {
		t.Fatal("duplicate counter not registered")
	} else if mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected duplicates=1")
	}

	if mf := findMetricFamily(mfs, "settlement_stock_update_failures_total"); mf == nil {
		t.Fatal("stock failure counter not registered")
	} else if mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected stock failures=1")
	}
}

func TestSettlementMetricsNilSafe(t *testing.T) {
	var m *SettlementMetrics
	m.ObserveEvent("x", "y", time.Second)
	m.IncDuplicate()
	m.IncStockFailure()
	m.IncCommission("supplier")

	empty := NewSettlementMetrics(nil)
	empty.ObserveEvent("x", "y", time.Second)
	empty.IncCommission("supplier")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
