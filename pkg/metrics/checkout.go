package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout pipeline outcomes.
type CheckoutMetrics struct {
	duration       *prometheus.HistogramVec
	ordersCreated  prometheus.Counter
	failures       *prometheus.CounterVec
	stockConflicts prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed by the checkout pipeline.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout attempts rejected, by reason.",
	}, []string{"reason"})
	stockConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_stock_conflicts_total",
		Help: "Checkout attempts aborted by a concurrent stock decrement.",
	})
	reg.MustRegister(duration, ordersCreated, failures, stockConflicts)
	return &CheckoutMetrics{
		duration:       duration,
		ordersCreated:  ordersCreated,
		failures:       failures,
		stockConflicts: stockConflicts,
	}
}

// ObserveDuration records the duration for the given outcome label.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncOrdersCreated increments the committed-order counter.
func (c *CheckoutMetrics) IncOrdersCreated() {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.Inc()
}

// IncFailure increments the failure counter for the given reason.
func (c *CheckoutMetrics) IncFailure(reason string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncStockConflict increments the concurrent stock conflict counter.
func (c *CheckoutMetrics) IncStockConflict() {
	if c == nil || c.stockConflicts == nil {
		return
	}
	c.stockConflicts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
