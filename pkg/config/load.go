package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Expand ${VAR} references in provider endpoints so API keys can
	// stay out of config files
	expandProviderURLs(&cfg)

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SLUICE_SECTION_FIELD (e.g., SLUICE_CACHE_BACKEND).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format SLUICE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Provider overrides for every configured provider
	for name := range cfg.Providers {
		applyProviderEnvOverrides(cfg, name)
	}

	// Circuit breaker overrides
	if val := os.Getenv("SLUICE_CIRCUIT_FAILURE_THRESHOLD"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Circuit.FailureThreshold = i
		}
	}
	if val := os.Getenv("SLUICE_CIRCUIT_RESET_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Circuit.ResetTimeout = d
		}
	}
	if val := os.Getenv("SLUICE_CIRCUIT_HALF_OPEN_REQUESTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Circuit.HalfOpenRequests = i
		}
	}

	// Backoff overrides
	if val := os.Getenv("SLUICE_BACKOFF_INITIAL_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Backoff.InitialDelay = d
		}
	}
	if val := os.Getenv("SLUICE_BACKOFF_FACTOR"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Backoff.Factor = f
		}
	}
	if val := os.Getenv("SLUICE_BACKOFF_JITTER"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Backoff.Jitter = f
		}
	}
	if val := os.Getenv("SLUICE_BACKOFF_MAX_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Backoff.MaxDelay = d
		}
	}

	// Cache overrides
	if val := os.Getenv("SLUICE_CACHE_BACKEND"); val != "" {
		cfg.Cache.Backend = val
	}
	if val := os.Getenv("SLUICE_CACHE_SQLITE_PATH"); val != "" {
		cfg.Cache.SQLitePath = val
	}
	if val := os.Getenv("SLUICE_CACHE_SWEEP_SCHEDULE"); val != "" {
		cfg.Cache.SweepSchedule = val
	}

	// Probe overrides
	if val := os.Getenv("SLUICE_PROBE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Probe.Enabled = b
		}
	}
	if val := os.Getenv("SLUICE_PROBE_SCHEDULE"); val != "" {
		cfg.Probe.Schedule = val
	}
	if val := os.Getenv("SLUICE_PROBE_METHOD"); val != "" {
		cfg.Probe.Method = val
	}

	// Telemetry overrides
	if val := os.Getenv("SLUICE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SLUICE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SLUICE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SLUICE_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("SLUICE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}

// expandProviderURLs expands environment variable references in provider
// endpoint URLs. Solana RPC endpoints carry the access credential in the
// URL itself, so configs reference the environment
// (url: "https://mainnet.helius-rpc.com/?api-key=${HELIUS_API_KEY}")
// instead of embedding keys on disk. Unset variables expand to empty.
func expandProviderURLs(cfg *Config) {
	for name, p := range cfg.Providers {
		p.URL = os.ExpandEnv(p.URL)
		for i, fallback := range p.FallbackURLs {
			p.FallbackURLs[i] = os.ExpandEnv(fallback)
		}
		cfg.Providers[name] = p
	}
}

// applyProviderEnvOverrides applies environment variable overrides for a specific provider.
// Provider environment variables follow the format SLUICE_PROVIDERS_<NAME>_<FIELD>
// where NAME is the uppercase provider name with "-" and "." mapped to "_".
func applyProviderEnvOverrides(cfg *Config, providerName string) {
	provider := cfg.Providers[providerName]

	// Build environment variable prefix
	envName := strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToUpper(providerName))
	prefix := fmt.Sprintf("SLUICE_PROVIDERS_%s_", envName)

	if val := os.Getenv(prefix + "URL"); val != "" {
		provider.URL = val
	}
	if val := os.Getenv(prefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			provider.Timeout = d
		}
	}
	if val := os.Getenv(prefix + "MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			provider.MaxRetries = i
		}
	}
	if val := os.Getenv(prefix + "STRATEGY"); val != "" {
		provider.Strategy = val
	}
	if val := os.Getenv(prefix + "MAX_REQUESTS_PER_MINUTE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			provider.MaxRequestsPerMinute = i
		}
	}
	if val := os.Getenv(prefix + "MIN_TIME_BETWEEN_REQUESTS"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			provider.MinTimeBetweenRequests = d
		}
	}
	if val := os.Getenv(prefix + "USE_CACHING"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			provider.UseCaching = b
		}
	}
	if val := os.Getenv(prefix + "CACHE_TIME"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			provider.CacheTime = d
		}
	}

	cfg.Providers[providerName] = provider
}
