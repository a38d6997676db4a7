package governor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"helios-hq/sluice/pkg/governor/circuit"
)

// labelUnconfigured replaces the provider label for requests naming a
// provider absent from the configuration, keeping label cardinality
// bounded by the config rather than by caller input.
const labelUnconfigured = "unconfigured"

// Metrics contains the Prometheus collectors for the governor.
//
// Metrics:
//   - sluice_governor_admissions_total: admission checks by provider and result
//   - sluice_governor_denials_total: denied admissions by provider and reason
//   - sluice_governor_outcomes_total: recorded upstream outcomes by provider and result
//   - sluice_governor_upstream_rate_limited_total: 429 responses per provider
//   - sluice_governor_cache_hits_total / _misses_total: response cache lookups
//   - sluice_governor_circuit_state: breaker state per provider (0=closed, 1=open, 2=half_open)
//   - sluice_governor_admit_duration_seconds: admission check latency
//
// All methods are safe to call on a nil *Metrics, so a Governor without
// collectors pays only a nil check.
type Metrics struct {
	admissions          *prometheus.CounterVec
	denials             *prometheus.CounterVec
	outcomes            *prometheus.CounterVec
	upstreamRateLimited *prometheus.CounterVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	circuitState        *prometheus.GaugeVec
	admitDuration       *prometheus.HistogramVec
}

// NewMetrics creates and registers the governor's collectors with the
// given registerer. A nil registerer uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		admissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_governor_admissions_total",
				Help: "Total number of admission checks by result",
			},
			[]string{"provider", "result"},
		),

		denials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_governor_denials_total",
				Help: "Total number of denied admissions by reason",
			},
			[]string{"provider", "reason"},
		),

		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_governor_outcomes_total",
				Help: "Total number of recorded upstream call outcomes by result",
			},
			[]string{"provider", "result"},
		),

		upstreamRateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_governor_upstream_rate_limited_total",
				Help: "Total number of HTTP 429 responses received from providers",
			},
			[]string{"provider"},
		),

		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_governor_cache_hits_total",
				Help: "Total number of response cache hits",
			},
			[]string{"provider"},
		),

		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_governor_cache_misses_total",
				Help: "Total number of response cache misses",
			},
			[]string{"provider"},
		),

		circuitState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sluice_governor_circuit_state",
				Help: "Circuit breaker state per provider (0=closed, 1=open, 2=half_open)",
			},
			[]string{"provider"},
		),

		admitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sluice_governor_admit_duration_seconds",
				Help:    "Duration of admission checks in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"provider"},
		),
	}
}

// RecordAdmission records an admission check result.
func (m *Metrics) RecordAdmission(provider string, allowed bool) {
	if m == nil {
		return
	}
	result := "allowed"
	if !allowed {
		result = "denied"
	}
	m.admissions.WithLabelValues(provider, result).Inc()
}

// RecordDenial records a denied admission with its reason.
func (m *Metrics) RecordDenial(provider string, reason DenyReason) {
	if m == nil {
		return
	}
	m.denials.WithLabelValues(provider, string(reason)).Inc()
}

// RecordOutcome records an upstream call outcome.
func (m *Metrics) RecordOutcome(provider string, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.outcomes.WithLabelValues(provider, result).Inc()
}

// RecordUpstreamRateLimited records a 429 response from a provider.
func (m *Metrics) RecordUpstreamRateLimited(provider string) {
	if m == nil {
		return
	}
	m.upstreamRateLimited.WithLabelValues(provider).Inc()
}

// RecordCacheHit records a response cache hit.
func (m *Metrics) RecordCacheHit(provider string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(provider).Inc()
}

// RecordCacheMiss records a response cache miss.
func (m *Metrics) RecordCacheMiss(provider string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(provider).Inc()
}

// UpdateCircuitState updates the breaker state gauge for a provider.
func (m *Metrics) UpdateCircuitState(provider string, state circuit.State) {
	if m == nil {
		return
	}
	m.circuitState.WithLabelValues(provider).Set(float64(state))
}

// ObserveAdmitDuration records the wall time of one admission check.
func (m *Metrics) ObserveAdmitDuration(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.admitDuration.WithLabelValues(provider).Observe(seconds)
}
