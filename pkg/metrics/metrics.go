package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// HTTPMetrics records request counts and latency per route template.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// Observe records one finished request.
func (m *HTTPMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// OrderMetrics tracks ledger writes and payment intent outcomes.
type OrderMetrics struct {
	writes   *prometheus.CounterVec
	merged   prometheus.Counter
	payments *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_writes_total",
		Help:      "Order ledger writes by mode (merge/replace/delete) and outcome.",
	}, []string{"mode", "outcome"})
	merged := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_quantity_merged_total",
		Help:      "Sum of quantity deltas applied through merge upserts.",
	})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_intents_total",
		Help:      "Payment intent creation attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(writes, merged, payments)
	return &OrderMetrics{writes: writes, merged: merged, payments: payments}
}

// IncWrite counts one ledger write.
func (m *OrderMetrics) IncWrite(mode, outcome string) {
	if m == nil || m.writes == nil {
		return
	}
	m.writes.WithLabelValues(normalizeLabel(mode), normalizeLabel(outcome)).Inc()
}

// AddMergedQuantity adds a merged delta.
func (m *OrderMetrics) AddMergedQuantity(delta int64) {
	if m == nil || m.merged == nil || delta <= 0 {
		return
	}
	m.merged.Add(float64(delta))
}

// IncPaymentIntent counts one payment intent attempt.
func (m *OrderMetrics) IncPaymentIntent(outcome string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
