package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records outcomes of stock-movement applies.
type LedgerMetrics struct {
	applied      *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	casRetries   prometheus.Counter
	casConflicts prometheus.Counter
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transactions_applied_total",
		Help: "Stock-movement transactions applied, by type.",
	}, []string{"type"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transactions_rejected_total",
		Help: "Stock-movement transactions rejected, by reason.",
	}, []string{"reason"})
	casRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_apply_retries_total",
		Help: "Apply attempts repeated after a stale quantity read.",
	})
	casConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_apply_conflicts_total",
		Help: "Applies abandoned after exhausting the retry budget.",
	})
	reg.MustRegister(applied, rejected, casRetries, casConflicts)
	return &LedgerMetrics{
		applied:      applied,
		rejected:     rejected,
		casRetries:   casRetries,
		casConflicts: casConflicts,
	}
}

// IncApplied counts a committed transaction of the given type.
func (m *LedgerMetrics) IncApplied(transactionType string) {
	if m == nil || m.applied == nil {
		return
	}
	m.applied.WithLabelValues(normalizeLabel(transactionType)).Inc()
}

// IncRejected counts a rejected transaction by reason label.
func (m *LedgerMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncRetry counts one optimistic-retry round trip.
func (m *LedgerMetrics) IncRetry() {
	if m == nil || m.casRetries == nil {
		return
	}
	m.casRetries.Inc()
}

// IncConflict counts an apply that exhausted its retry budget.
func (m *LedgerMetrics) IncConflict() {
	if m == nil || m.casConflicts == nil {
		return
	}
	m.casConflicts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
