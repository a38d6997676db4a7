package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus collectors for the governed client.
//
// Metrics:
//   - sluice_rpc_requests_total: calls by provider and result (success,
//     cached, denied, error)
//   - sluice_rpc_retries_total: retried dispatches per provider
//   - sluice_rpc_request_duration_seconds: HTTP exchange latency
//
// All methods are safe to call on a nil *Metrics, so a Client without
// collectors pays only a nil check.
type Metrics struct {
	requests        *prometheus.CounterVec
	retries         *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the client's collectors with the given
// registerer. A nil registerer uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_rpc_requests_total",
				Help: "Total number of governed RPC calls by result",
			},
			[]string{"provider", "result"},
		),

		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_rpc_retries_total",
				Help: "Total number of retried RPC dispatches",
			},
			[]string{"provider"},
		),

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sluice_rpc_request_duration_seconds",
				Help:    "Duration of HTTP exchanges with providers in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
			},
			[]string{"provider"},
		),
	}
}

// RecordRequest records the final result of one governed call.
func (m *Metrics) RecordRequest(provider, result string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(provider, result).Inc()
}

// RecordRetry records a retried dispatch.
func (m *Metrics) RecordRetry(provider string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(provider).Inc()
}

// ObserveRequestDuration records the wall time of one HTTP exchange.
func (m *Metrics) ObserveRequestDuration(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(provider).Observe(seconds)
}
