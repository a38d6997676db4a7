package config

import "time"

// Strategy names accepted in provider configuration.
const (
	StrategyFixed              = "fixed"
	StrategyTokenBucket        = "token_bucket"
	StrategyAdaptive           = "adaptive"
	StrategyExponentialBackoff = "exponential_backoff"
)

// Cache backend names accepted in cache configuration.
const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
)

// Config is the root configuration structure for Sluice.
// It describes the governed providers, the global circuit breaker and
// retry backoff parameters, the response cache, the health probe
// schedule, and telemetry settings.
type Config struct {
	// Providers contains the admission configuration for each upstream
	// RPC provider. Keys are provider names (e.g., "helius", "quicknode").
	// Providers not listed here are passed through without governing.
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Circuit contains the circuit breaker parameters applied to every
	// provider that does not override them.
	Circuit CircuitConfig `yaml:"circuit"`

	// Backoff contains the retry delay parameters used by NextRetryDelay
	// for providers without an exponential_backoff block of their own.
	Backoff BackoffConfig `yaml:"backoff"`

	// Cache contains response cache configuration including backend
	// selection and the expired-entry sweep schedule.
	Cache CacheConfig `yaml:"cache"`

	// Probe contains the scheduled health probe configuration.
	Probe ProbeConfig `yaml:"probe"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProviderConfig contains the admission and transport configuration for
// a single upstream provider.
type ProviderConfig struct {
	// URL is the provider's JSON-RPC endpoint.
	// Example: "https://mainnet.helius-rpc.com/?api-key=${HELIUS_API_KEY}"
	URL string `yaml:"url"`

	// FallbackURLs are tried in order when the primary endpoint fails.
	FallbackURLs []string `yaml:"fallback_urls"`

	// Timeout is the maximum duration for requests to this provider.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the maximum number of retry attempts for failed requests.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// Strategy selects the admission algorithm for this provider.
	// Options: "fixed", "token_bucket", "adaptive", "exponential_backoff"
	// Default: "fixed"
	Strategy string `yaml:"strategy"`

	// MaxRequestsPerMinute caps admissions in a rolling minute.
	// Zero means unlimited. Used by the "fixed" strategy and as the
	// starting ceiling for "adaptive".
	MaxRequestsPerMinute int `yaml:"max_requests_per_minute"`

	// MinTimeBetweenRequests is the minimum spacing between admitted
	// requests for the "fixed" strategy. Zero disables the check.
	MinTimeBetweenRequests time.Duration `yaml:"min_time_between_requests"`

	// UseCaching enables response caching for this provider.
	// Default: false
	UseCaching bool `yaml:"use_caching"`

	// CacheTime is how long cached responses stay valid.
	// Only used when UseCaching is true.
	// Default: 30s
	CacheTime time.Duration `yaml:"cache_time"`

	// TokenBucket holds the parameters for the "token_bucket" strategy.
	// Required when Strategy is "token_bucket".
	TokenBucket *TokenBucketConfig `yaml:"token_bucket"`

	// Adaptive holds the parameters for the "adaptive" strategy.
	// Required when Strategy is "adaptive".
	Adaptive *AdaptiveConfig `yaml:"adaptive"`

	// ExponentialBackoff holds the parameters for the
	// "exponential_backoff" strategy and for NextRetryDelay. When nil,
	// the global backoff section is used.
	ExponentialBackoff *BackoffConfig `yaml:"exponential_backoff"`

	// Circuit overrides the global circuit breaker parameters for this
	// provider. When nil, the global circuit section is used.
	Circuit *CircuitConfig `yaml:"circuit"`
}

// TokenBucketConfig contains the parameters for the token bucket
// admission strategy.
type TokenBucketConfig struct {
	// BucketSize is the maximum token balance (burst capacity).
	BucketSize float64 `yaml:"bucket_size"`

	// RefillRatePerSecond is the continuous refill rate.
	RefillRatePerSecond float64 `yaml:"refill_rate_per_second"`

	// InitialTokens is the balance at startup, clamped to
	// [0, BucketSize].
	InitialTokens float64 `yaml:"initial_tokens"`
}

// AdaptiveConfig contains the parameters for the adaptive admission
// strategy. The per-minute ceiling starts at the provider's
// MaxRequestsPerMinute, shrinks multiplicatively on failure, and grows
// after a streak of successes.
type AdaptiveConfig struct {
	// SuccessThreshold is the number of consecutive successes required
	// before the ceiling is raised.
	SuccessThreshold int `yaml:"success_threshold"`

	// IncreaseFactor is the fractional raise applied at the threshold:
	// the ceiling becomes ceiling * (1 + IncreaseFactor).
	IncreaseFactor float64 `yaml:"increase_factor"`

	// DecreaseFactor is the multiplier applied on every failure.
	// Must be strictly between 0 and 1.
	DecreaseFactor float64 `yaml:"decrease_factor"`

	// MinLimit is the floor the ceiling never drops below.
	MinLimit float64 `yaml:"min_limit"`

	// MaxLimit is the cap the ceiling never exceeds.
	MaxLimit float64 `yaml:"max_limit"`
}

// BackoffConfig contains exponential backoff parameters, used both as
// the "exponential_backoff" admission strategy and as the retry delay
// formula exposed by NextRetryDelay.
type BackoffConfig struct {
	// InitialDelay is the delay after the first failure.
	// Default: 500ms
	InitialDelay time.Duration `yaml:"initial_delay"`

	// Factor is the multiplier applied per additional failure.
	// Default: 2.0
	Factor float64 `yaml:"factor"`

	// Jitter is the symmetric random spread applied to the computed
	// delay, as a fraction in [0, 1].
	// Default: 0.2
	Jitter float64 `yaml:"jitter"`

	// MaxDelay caps the computed delay before jitter.
	// Default: 30s
	MaxDelay time.Duration `yaml:"max_delay"`
}

// CircuitConfig contains circuit breaker parameters.
type CircuitConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	// Default: 5
	FailureThreshold int `yaml:"failure_threshold"`

	// ResetTimeout is how long the circuit stays open before allowing
	// trial requests.
	// Default: 30s
	ResetTimeout time.Duration `yaml:"reset_timeout"`

	// HalfOpenRequests is the number of trial requests allowed while
	// half-open.
	// Default: 1
	HalfOpenRequests int `yaml:"half_open_requests"`
}

// CacheConfig contains response cache configuration.
type CacheConfig struct {
	// Backend selects the cache store implementation.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the "sqlite" backend.
	// Default: "data/sluice-cache.db"
	SQLitePath string `yaml:"sqlite_path"`

	// SweepSchedule is a cron expression for bulk removal of expired
	// entries. Empty disables scheduled sweeping; lazy expiry on read
	// still applies.
	// Default: "*/5 * * * *" (every 5 minutes)
	SweepSchedule string `yaml:"sweep_schedule"`
}

// ProbeConfig contains scheduled health probe configuration. Probes
// issue a cheap RPC call through the governor so circuit and adaptive
// state track provider health even when traffic is idle.
type ProbeConfig struct {
	// Enabled controls whether scheduled probing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression for probe runs.
	// Default: "* * * * *" (every minute)
	Schedule string `yaml:"schedule"`

	// Method is the RPC method used for probing.
	// Default: "getHealth"
	Method string `yaml:"method"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics and health endpoints
	// bind to.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus scrape endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// Provider returns the configuration for a named provider and whether
// the provider is configured at all.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	p, ok := c.Providers[name]
	return p, ok
}

// CircuitFor resolves the effective circuit breaker parameters for a
// provider, preferring its override over the global section.
func (c *Config) CircuitFor(p ProviderConfig) CircuitConfig {
	if p.Circuit != nil {
		return *p.Circuit
	}
	return c.Circuit
}

// BackoffFor resolves the effective backoff parameters for a provider,
// preferring its exponential_backoff block over the global section.
func (c *Config) BackoffFor(p ProviderConfig) BackoffConfig {
	if p.ExponentialBackoff != nil {
		return *p.ExponentialBackoff
	}
	return c.Backoff
}
