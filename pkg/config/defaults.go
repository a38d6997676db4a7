package config

import "time"

// Default values for configuration fields.
const (
	// Provider defaults
	DefaultProviderTimeout    = 30 * time.Second
	DefaultProviderMaxRetries = 3
	DefaultProviderStrategy   = StrategyFixed
	DefaultProviderCacheTime  = 30 * time.Second

	// Circuit breaker defaults
	DefaultCircuitFailureThreshold = 5
	DefaultCircuitResetTimeout     = 30 * time.Second
	DefaultCircuitHalfOpenRequests = 1

	// Backoff defaults
	DefaultBackoffInitialDelay = 500 * time.Millisecond
	DefaultBackoffFactor       = 2.0
	DefaultBackoffJitter       = 0.2
	DefaultBackoffMaxDelay     = 30 * time.Second

	// Cache defaults
	DefaultCacheBackend       = CacheBackendMemory
	DefaultCacheSQLitePath    = "data/sluice-cache.db"
	DefaultCacheSweepSchedule = "*/5 * * * *"

	// Probe defaults
	DefaultProbeSchedule = "* * * * *"
	DefaultProbeMethod   = "getHealth"

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultMetricsEnabled       = true
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Provider defaults - applied to each provider
	for name, provider := range cfg.Providers {
		if provider.Timeout == 0 {
			provider.Timeout = DefaultProviderTimeout
		}
		if provider.MaxRetries == 0 {
			provider.MaxRetries = DefaultProviderMaxRetries
		}
		if provider.Strategy == "" {
			provider.Strategy = DefaultProviderStrategy
		}
		if provider.UseCaching && provider.CacheTime == 0 {
			provider.CacheTime = DefaultProviderCacheTime
		}
		if provider.ExponentialBackoff != nil {
			applyBackoffDefaults(provider.ExponentialBackoff)
		}
		if provider.Circuit != nil {
			applyCircuitDefaults(provider.Circuit)
		}
		// Update the provider in the map
		cfg.Providers[name] = provider
	}

	// Circuit breaker defaults
	applyCircuitDefaults(&cfg.Circuit)

	// Backoff defaults
	applyBackoffDefaults(&cfg.Backoff)

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = DefaultCacheSQLitePath
	}
	if cfg.Cache.SweepSchedule == "" {
		cfg.Cache.SweepSchedule = DefaultCacheSweepSchedule
	}

	// Probe defaults
	if cfg.Probe.Schedule == "" {
		cfg.Probe.Schedule = DefaultProbeSchedule
	}
	if cfg.Probe.Method == "" {
		cfg.Probe.Method = DefaultProbeMethod
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// applyCircuitDefaults fills zero-valued circuit breaker parameters.
func applyCircuitDefaults(cfg *CircuitConfig) {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultCircuitFailureThreshold
	}
	if cfg.ResetTimeout == 0 {
		cfg.ResetTimeout = DefaultCircuitResetTimeout
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = DefaultCircuitHalfOpenRequests
	}
}

// applyBackoffDefaults fills zero-valued backoff parameters.
// Jitter only defaults when the whole section was omitted: a section
// with any field set keeps jitter as written, so explicit zero jitter
// stays expressible.
func applyBackoffDefaults(cfg *BackoffConfig) {
	if *cfg == (BackoffConfig{}) {
		cfg.Jitter = DefaultBackoffJitter
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = DefaultBackoffInitialDelay
	}
	if cfg.Factor == 0 {
		cfg.Factor = DefaultBackoffFactor
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = DefaultBackoffMaxDelay
	}
}
