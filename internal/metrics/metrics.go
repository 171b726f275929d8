// Package metrics contains the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
)

// Metrics groups the collectors. A nil *Metrics is valid and records
// nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	operations *prometheus.CounterVec
	latencies  *prometheus.HistogramVec
	requests   *prometheus.CounterVec
	relayed    prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quorum_wallet_operations_total",
				Help: "How many registry and wallet operations ran, partitioned by outcome.",
			},
			[]string{"component", "operation", "outcome"},
		),
		latencies: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quorum_wallet_operation_seconds",
				Help:    "How long registry and wallet operations take.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"component", "operation"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quorum_wallet_http_requests_total",
				Help: "HTTP requests served, partitioned by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		relayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quorum_wallet_events_relayed_total",
			Help: "Event log records delivered to the notifier.",
		}),
	}
	reg.MustRegister(m.operations, m.latencies, m.requests, m.relayed)
	return m
}

// Observe records the outcome and latency of one operation.
func (m *Metrics) Observe(component, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(component, operation, apperrors.Code(err)).Inc()
	m.latencies.WithLabelValues(component, operation).Observe(time.Since(start).Seconds())
}

// ObserveRequest counts one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Relayed counts records handed to the notifier.
func (m *Metrics) Relayed(n int) {
	if m == nil {
		return
	}
	m.relayed.Add(float64(n))
}
