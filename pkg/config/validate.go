package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "providers.helius.strategy").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	// Validate providers configuration
	errs = append(errs, validateProviders(cfg.Providers)...)

	// Validate global circuit breaker configuration
	errs = append(errs, validateCircuit(&cfg.Circuit, "circuit")...)

	// Validate global backoff configuration
	errs = append(errs, validateBackoff(&cfg.Backoff, "backoff")...)

	// Validate cache configuration
	errs = append(errs, validateCache(&cfg.Cache)...)

	// Validate telemetry configuration
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProviders validates every provider entry in sorted name order
// so errors are reported deterministically.
func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == "" {
			errs = append(errs, FieldError{
				Field:   "providers",
				Message: "provider name cannot be empty",
			})
			continue
		}
		errs = append(errs, validateProvider(name, providers[name])...)
	}

	return errs
}

// validateProvider validates a single provider entry.
func validateProvider(name string, p ProviderConfig) []FieldError {
	var errs []FieldError
	path := "providers." + name

	if p.URL != "" {
		if u, err := url.Parse(p.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, FieldError{
				Field:   path + ".url",
				Message: "must be a valid http or https URL",
			})
		}
	}
	for i, fallback := range p.FallbackURLs {
		if u, err := url.Parse(fallback); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s.fallback_urls[%d]", path, i),
				Message: "must be a valid http or https URL",
			})
		}
	}

	if p.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   path + ".timeout",
			Message: "timeout must be non-negative",
		})
	}
	if p.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   path + ".max_retries",
			Message: "max retries must be non-negative",
		})
	}
	if p.MaxRequestsPerMinute < 0 {
		errs = append(errs, FieldError{
			Field:   path + ".max_requests_per_minute",
			Message: "max requests per minute must be non-negative",
		})
	}
	if p.MinTimeBetweenRequests < 0 {
		errs = append(errs, FieldError{
			Field:   path + ".min_time_between_requests",
			Message: "min time between requests must be non-negative",
		})
	}
	if p.UseCaching && p.CacheTime <= 0 {
		errs = append(errs, FieldError{
			Field:   path + ".cache_time",
			Message: "cache time must be positive when caching is enabled",
		})
	}

	switch p.Strategy {
	case StrategyFixed:
		// Uses min_time_between_requests and max_requests_per_minute directly.
	case StrategyTokenBucket:
		if p.TokenBucket == nil {
			errs = append(errs, FieldError{
				Field:   path + ".token_bucket",
				Message: "token_bucket parameters are required for the token_bucket strategy",
			})
		} else {
			errs = append(errs, validateTokenBucket(p.TokenBucket, path+".token_bucket")...)
		}
	case StrategyAdaptive:
		if p.Adaptive == nil {
			errs = append(errs, FieldError{
				Field:   path + ".adaptive",
				Message: "adaptive parameters are required for the adaptive strategy",
			})
		} else {
			errs = append(errs, validateAdaptive(p.Adaptive, path+".adaptive")...)
		}
	case StrategyExponentialBackoff:
		// Falls back to the global backoff section when the block is absent.
	default:
		errs = append(errs, FieldError{
			Field:   path + ".strategy",
			Message: fmt.Sprintf("unknown strategy %q (valid: %s, %s, %s, %s)",
				p.Strategy, StrategyFixed, StrategyTokenBucket, StrategyAdaptive, StrategyExponentialBackoff),
		})
	}

	if p.ExponentialBackoff != nil {
		errs = append(errs, validateBackoff(p.ExponentialBackoff, path+".exponential_backoff")...)
	}
	if p.Circuit != nil {
		errs = append(errs, validateCircuit(p.Circuit, path+".circuit")...)
	}

	return errs
}

// validateTokenBucket validates token bucket strategy parameters.
func validateTokenBucket(cfg *TokenBucketConfig, path string) []FieldError {
	var errs []FieldError

	if cfg.BucketSize <= 0 {
		errs = append(errs, FieldError{
			Field:   path + ".bucket_size",
			Message: "bucket size must be positive",
		})
	}
	if cfg.RefillRatePerSecond <= 0 {
		errs = append(errs, FieldError{
			Field:   path + ".refill_rate_per_second",
			Message: "refill rate must be positive",
		})
	}
	if cfg.InitialTokens < 0 {
		errs = append(errs, FieldError{
			Field:   path + ".initial_tokens",
			Message: "initial tokens must be non-negative",
		})
	}

	return errs
}

// validateAdaptive validates adaptive strategy parameters.
func validateAdaptive(cfg *AdaptiveConfig, path string) []FieldError {
	var errs []FieldError

	if cfg.SuccessThreshold < 1 {
		errs = append(errs, FieldError{
			Field:   path + ".success_threshold",
			Message: "success threshold must be at least 1",
		})
	}
	if cfg.IncreaseFactor <= 0 {
		errs = append(errs, FieldError{
			Field:   path + ".increase_factor",
			Message: "increase factor must be positive",
		})
	}
	if cfg.DecreaseFactor <= 0 || cfg.DecreaseFactor >= 1 {
		errs = append(errs, FieldError{
			Field:   path + ".decrease_factor",
			Message: "decrease factor must be strictly between 0 and 1",
		})
	}
	if cfg.MinLimit < 1 {
		errs = append(errs, FieldError{
			Field:   path + ".min_limit",
			Message: "min limit must be at least 1",
		})
	}
	if cfg.MaxLimit < cfg.MinLimit {
		errs = append(errs, FieldError{
			Field:   path + ".max_limit",
			Message: "max limit must be greater than or equal to min limit",
		})
	}

	return errs
}

// validateBackoff validates exponential backoff parameters.
func validateBackoff(cfg *BackoffConfig, path string) []FieldError {
	var errs []FieldError

	if cfg.InitialDelay <= 0 {
		errs = append(errs, FieldError{
			Field:   path + ".initial_delay",
			Message: "initial delay must be positive",
		})
	}
	if cfg.Factor < 1 {
		errs = append(errs, FieldError{
			Field:   path + ".factor",
			Message: "factor must be at least 1",
		})
	}
	if cfg.Jitter < 0 || cfg.Jitter > 1 {
		errs = append(errs, FieldError{
			Field:   path + ".jitter",
			Message: "jitter must be between 0 and 1",
		})
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		errs = append(errs, FieldError{
			Field:   path + ".max_delay",
			Message: "max delay must be greater than or equal to initial delay",
		})
	}

	return errs
}

// validateCircuit validates circuit breaker parameters.
func validateCircuit(cfg *CircuitConfig, path string) []FieldError {
	var errs []FieldError

	if cfg.FailureThreshold < 1 {
		errs = append(errs, FieldError{
			Field:   path + ".failure_threshold",
			Message: "failure threshold must be at least 1",
		})
	}
	if cfg.ResetTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   path + ".reset_timeout",
			Message: "reset timeout must be positive",
		})
	}
	if cfg.HalfOpenRequests < 1 {
		errs = append(errs, FieldError{
			Field:   path + ".half_open_requests",
			Message: "half open requests must be at least 1",
		})
	}

	return errs
}

// validateCache validates cache configuration.
func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case CacheBackendMemory, CacheBackendSQLite:
	default:
		errs = append(errs, FieldError{
			Field:   "cache.backend",
			Message: fmt.Sprintf("unknown backend %q (valid: %s, %s)", cfg.Backend, CacheBackendMemory, CacheBackendSQLite),
		})
	}

	if cfg.Backend == CacheBackendSQLite && cfg.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "cache.sqlite_path",
			Message: "sqlite path is required for the sqlite backend",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (valid: debug, info, warn, error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (valid: json, text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.listen_address",
			Message: "listen address is required when metrics are enabled",
		})
	}

	return errs
}
