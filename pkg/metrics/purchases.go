package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PurchaseMetrics records lead purchase outcomes.
type PurchaseMetrics struct {
	duration             *prometheus.HistogramVec
	purchases            *prometheus.CounterVec
	failures             *prometheus.CounterVec
	compensationFailures prometheus.Counter
	topups               prometheus.Counter
}

// NewPurchaseMetrics registers the purchase metrics on the provided registerer.
func NewPurchaseMetrics(reg prometheus.Registerer) *PurchaseMetrics {
	if reg == nil {
		return &PurchaseMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lead_purchase_duration_seconds",
		Help:    "Duration of lead purchase attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	purchases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lead_purchases_total",
		Help: "Completed lead purchases by payment method.",
	}, []string{"method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lead_purchase_failures_total",
		Help: "Failed lead purchase attempts by reason.",
	}, []string{"reason"})
	compensationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "purchase_compensation_failures_total",
		Help: "Rollbacks that could not be applied and need manual reconciliation.",
	})
	topups := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wallet_topups_total",
		Help: "Successful wallet top-ups.",
	})
	reg.MustRegister(duration, purchases, failures, compensationFailures, topups)
	return &PurchaseMetrics{
		duration:             duration,
		purchases:            purchases,
		failures:             failures,
		compensationFailures: compensationFailures,
		topups:               topups,
	}
}

// ObserveDuration records how long a purchase attempt took.
func (m *PurchaseMetrics) ObserveDuration(method string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncPurchase increments the completed purchase counter for a payment method.
func (m *PurchaseMetrics) IncPurchase(method string) {
	if m == nil || m.purchases == nil {
		return
	}
	m.purchases.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncFailure increments the failure counter for the given reason.
func (m *PurchaseMetrics) IncFailure(reason string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncCompensationFailure counts a rollback that did not apply.
func (m *PurchaseMetrics) IncCompensationFailure() {
	if m == nil || m.compensationFailures == nil {
		return
	}
	m.compensationFailures.Inc()
}

// IncTopUp counts a successful wallet top-up.
func (m *PurchaseMetrics) IncTopUp() {
	if m == nil || m.topups == nil {
		return
	}
	m.topups.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
