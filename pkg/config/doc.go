// Package config defines the Sluice configuration model: per-provider
// admission strategy blocks, circuit breaker and backoff settings, cache
// and telemetry sections. Configuration comes from a YAML file, with
// defaults applied, environment overrides on top, and validation last.
//
// # Configuration Loading
//
// LoadConfig reads a file as-is; LoadConfigWithEnvOverrides, which the
// daemon and every command use, also applies SLUICE_* overrides:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("sluice.yaml")
//
// Values are resolved in order, later steps overriding earlier ones:
// built-in defaults, then the file, then environment variables. Whatever
// survives is validated, and loading fails rather than hand back a
// half-usable Config.
//
// Provider URLs (including fallback URLs) expand ${VAR} references from
// the environment at load time, so API keys stay out of checked-in files.
//
// # Environment Variable Overrides
//
// Override variables are named SLUICE_SECTION_FIELD:
//
//   - SLUICE_CACHE_BACKEND overrides cache.backend
//   - SLUICE_PROVIDERS_HELIUS_URL overrides providers.helius.url
//   - SLUICE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Provider overrides apply only to providers already present in the file;
// an override cannot introduce a new provider.
//
// # Hot Reload
//
// Watcher watches the configuration file and delivers a freshly loaded
// Config on every change that parses and validates; invalid edits are
// logged and the running configuration is kept. Resetting live provider
// state from a delivered Config is the caller's concern.
//
// # Validation
//
// Validate checks strategy names against the closed set of admission
// strategies, requires the parameter block the selected strategy needs,
// and range-checks numeric fields (jitter within [0, 1], decrease factor
// within (0, 1), positive rates and sizes). Provider URLs must be http or
// https. Errors carry field paths and accumulate rather than stopping at
// the first problem:
//
//	configuration validation failed with 2 errors:
//	  - providers.helius.strategy: unknown strategy "leaky_bucket" (valid: fixed, token_bucket, adaptive, exponential_backoff)
//	  - providers.helius.token_bucket.bucket_size: bucket size must be positive
//
// # Example Configuration
//
// A minimal file with one token bucket provider:
//
//	providers:
//	  helius:
//	    url: "https://mainnet.helius-rpc.com/?api-key=${HELIUS_API_KEY}"
//	    strategy: "token_bucket"
//	    token_bucket:
//	      bucket_size: 10
//	      refill_rate_per_second: 2
//	      initial_tokens: 10
//	    use_caching: true
//	    cache_time: "30s"
//
//	circuit:
//	  failure_threshold: 5
//	  reset_timeout: "30s"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// The process-wide Config behind GetConfig is guarded by a read-write
// lock: reads are concurrent, and SetConfig swaps the pointer atomically
// under the write lock during reloads.
package config
