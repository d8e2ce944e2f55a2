package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records outcomes of the order fulfillment transaction.
type OrderMetrics struct {
	duration  *prometheus.HistogramVec
	created   prometheus.Counter
	failed    *prometheus.CounterVec
	shortages prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_create_duration_seconds",
		Help:    "Duration of order creation transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed successfully.",
	})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Order creations rejected or rolled back.",
	}, []string{"reason"})
	shortages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_stock_shortages_total",
		Help: "Order creations rejected for insufficient stock.",
	})
	reg.MustRegister(duration, created, failed, shortages)
	return &OrderMetrics{
		duration:  duration,
		created:   created,
		failed:    failed,
		shortages: shortages,
	}
}

// ObserveCreate records one creation attempt with its outcome label.
func (m *OrderMetrics) ObserveCreate(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncCreated increments the committed order counter.
func (m *OrderMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

// IncFailed increments the failure counter for the given reason.
func (m *OrderMetrics) IncFailed(reason string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncShortage increments the insufficient-stock rejection counter.
func (m *OrderMetrics) IncShortage() {
	if m == nil || m.shortages == nil {
		return
	}
	m.shortages.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
