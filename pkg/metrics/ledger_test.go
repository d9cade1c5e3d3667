package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLedgerMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.IncApplied("IN")
	m.IncApplied("IN")
	m.IncApplied("OUT")
	m.IncRejected("insufficient_stock")
	m.IncRetry()
	m.IncConflict()

	if got := testutil.ToFloat64(m.applied.WithLabelValues("IN")); got != 2 {
		t.Fatalf("expected 2 IN applies, got %v", got)
	}
	if got := testutil.ToFloat64(m.applied.WithLabelValues("OUT")); got != 1 {
		t.Fatalf("expected 1 OUT apply, got %v", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues("insufficient_stock")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.casRetries); got != 1 {
		t.Fatalf("expected 1 retry, got %v", got)
	}
	if got := testutil.ToFloat64(m.casConflicts); got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
}

func TestLedgerMetricsNilSafe(t *testing.T) {
	var m *LedgerMetrics
	m.IncApplied("IN")
	m.IncRejected("x")
	m.IncRetry()
	m.IncConflict()

	empty := NewLedgerMetrics(nil)
	empty.IncApplied("")
}
