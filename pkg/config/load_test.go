package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfigFile writes content to a temporary config file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sluice.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  helius:
    url: "https://mainnet.helius-rpc.com/?api-key=test"
    fallback_urls:
      - "https://backup.helius-rpc.com"
    timeout: "45s"
    strategy: "token_bucket"
    token_bucket:
      bucket_size: 10
      refill_rate_per_second: 2
      initial_tokens: 10
    use_caching: true
    cache_time: "60s"
  quicknode:
    url: "https://example.quiknode.pro/abc"
    strategy: "adaptive"
    max_requests_per_minute: 120
    adaptive:
      success_threshold: 10
      increase_factor: 0.25
      decrease_factor: 0.5
      min_limit: 10
      max_limit: 300

circuit:
  failure_threshold: 3
  reset_timeout: "10s"
  half_open_requests: 2

backoff:
  initial_delay: "250ms"
  factor: 1.5
  jitter: 0.1
  max_delay: "5s"

cache:
  backend: "sqlite"
  sqlite_path: "/tmp/test-cache.db"

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	helius, ok := cfg.Provider("helius")
	if !ok {
		t.Fatal("expected helius provider to be configured")
	}
	if helius.URL != "https://mainnet.helius-rpc.com/?api-key=test" {
		t.Errorf("unexpected helius url %q", helius.URL)
	}
	if len(helius.FallbackURLs) != 1 {
		t.Errorf("expected 1 fallback url, got %d", len(helius.FallbackURLs))
	}
	if helius.Timeout != 45*time.Second {
		t.Errorf("expected timeout %v, got %v", 45*time.Second, helius.Timeout)
	}
	if helius.Strategy != StrategyTokenBucket {
		t.Errorf("expected strategy %q, got %q", StrategyTokenBucket, helius.Strategy)
	}
	if helius.TokenBucket == nil {
		t.Fatal("expected token_bucket parameters")
	}
	if helius.TokenBucket.BucketSize != 10 {
		t.Errorf("expected bucket size 10, got %v", helius.TokenBucket.BucketSize)
	}
	if !helius.UseCaching || helius.CacheTime != 60*time.Second {
		t.Errorf("expected caching enabled for 60s, got %v/%v", helius.UseCaching, helius.CacheTime)
	}
	// Unset provider fields receive defaults.
	if helius.MaxRetries != DefaultProviderMaxRetries {
		t.Errorf("expected default max retries %d, got %d", DefaultProviderMaxRetries, helius.MaxRetries)
	}

	quicknode := cfg.Providers["quicknode"]
	if quicknode.Strategy != StrategyAdaptive {
		t.Errorf("expected strategy %q, got %q", StrategyAdaptive, quicknode.Strategy)
	}
	if quicknode.Adaptive == nil || quicknode.Adaptive.MaxLimit != 300 {
		t.Errorf("unexpected adaptive parameters: %+v", quicknode.Adaptive)
	}
	if quicknode.MaxRequestsPerMinute != 120 {
		t.Errorf("expected 120 requests per minute, got %d", quicknode.MaxRequestsPerMinute)
	}

	if cfg.Circuit.FailureThreshold != 3 {
		t.Errorf("expected failure threshold 3, got %d", cfg.Circuit.FailureThreshold)
	}
	if cfg.Circuit.ResetTimeout != 10*time.Second {
		t.Errorf("expected reset timeout 10s, got %v", cfg.Circuit.ResetTimeout)
	}
	if cfg.Backoff.InitialDelay != 250*time.Millisecond {
		t.Errorf("expected initial delay 250ms, got %v", cfg.Backoff.InitialDelay)
	}
	if cfg.Cache.Backend != CacheBackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.Cache.Backend)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("unexpected logging config: %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  helius:
    url: "https://mainnet.helius-rpc.com/?api-key=test"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	helius := cfg.Providers["helius"]
	if helius.Strategy != StrategyFixed {
		t.Errorf("expected default strategy %q, got %q", StrategyFixed, helius.Strategy)
	}
	if helius.Timeout != DefaultProviderTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultProviderTimeout, helius.Timeout)
	}

	if cfg.Circuit.FailureThreshold != DefaultCircuitFailureThreshold {
		t.Errorf("expected default failure threshold %d, got %d",
			DefaultCircuitFailureThreshold, cfg.Circuit.FailureThreshold)
	}
	if cfg.Circuit.ResetTimeout != DefaultCircuitResetTimeout {
		t.Errorf("expected default reset timeout %v, got %v",
			DefaultCircuitResetTimeout, cfg.Circuit.ResetTimeout)
	}
	if cfg.Backoff.InitialDelay != DefaultBackoffInitialDelay {
		t.Errorf("expected default initial delay %v, got %v",
			DefaultBackoffInitialDelay, cfg.Backoff.InitialDelay)
	}
	if cfg.Backoff.Jitter != DefaultBackoffJitter {
		t.Errorf("expected default jitter %v, got %v", DefaultBackoffJitter, cfg.Backoff.Jitter)
	}
	if cfg.Cache.Backend != DefaultCacheBackend {
		t.Errorf("expected default cache backend %q, got %q", DefaultCacheBackend, cfg.Cache.Backend)
	}
	if cfg.Probe.Method != DefaultProbeMethod {
		t.Errorf("expected default probe method %q, got %q", DefaultProbeMethod, cfg.Probe.Method)
	}
	if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
		t.Errorf("expected default logging level %q, got %q",
			DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Metrics.ListenAddress != DefaultMetricsListenAddress {
		t.Errorf("expected default metrics address %q, got %q",
			DefaultMetricsListenAddress, cfg.Telemetry.Metrics.ListenAddress)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "providers: [not: a: map")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  helius:
    strategy: "leaky_bucket"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error for unknown strategy")
	}
	if !strings.Contains(err.Error(), "leaky_bucket") {
		t.Errorf("expected error to name the unknown strategy, got: %v", err)
	}
}

func TestLoadConfig_ExpandsEnvURLs(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  helius:
    url: "https://mainnet.helius-rpc.com/?api-key=${TEST_HELIUS_KEY}"
    fallback_urls:
      - "https://backup.example.com/?api-key=${TEST_HELIUS_KEY}"
`)

	t.Setenv("TEST_HELIUS_KEY", "k-from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	p := cfg.Providers["helius"]
	if p.URL != "https://mainnet.helius-rpc.com/?api-key=k-from-env" {
		t.Errorf("URL not expanded: %q", p.URL)
	}
	if p.FallbackURLs[0] != "https://backup.example.com/?api-key=k-from-env" {
		t.Errorf("fallback URL not expanded: %q", p.FallbackURLs[0])
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  helius:
    url: "https://mainnet.helius-rpc.com/?api-key=test"
    max_retries: 2

circuit:
  failure_threshold: 3
`)

	t.Setenv("SLUICE_PROVIDERS_HELIUS_MAX_RETRIES", "7")
	t.Setenv("SLUICE_CIRCUIT_FAILURE_THRESHOLD", "9")
	t.Setenv("SLUICE_CACHE_BACKEND", "sqlite")
	t.Setenv("SLUICE_TELEMETRY_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Providers["helius"].MaxRetries != 7 {
		t.Errorf("expected env override max retries 7, got %d", cfg.Providers["helius"].MaxRetries)
	}
	if cfg.Circuit.FailureThreshold != 9 {
		t.Errorf("expected env override failure threshold 9, got %d", cfg.Circuit.FailureThreshold)
	}
	if cfg.Cache.Backend != CacheBackendSQLite {
		t.Errorf("expected env override cache backend sqlite, got %q", cfg.Cache.Backend)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected env override logging level debug, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  helius:
    url: "https://mainnet.helius-rpc.com/?api-key=test"
`)

	t.Setenv("SLUICE_PROVIDERS_HELIUS_STRATEGY", "bogus")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation error after env override")
	}
}

func TestLoadConfigWithEnvOverrides_ProviderNameMapping(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  my-node:
    url: "https://original.example.com"
`)

	// Dashes in provider names map to underscores in env names.
	t.Setenv("SLUICE_PROVIDERS_MY_NODE_URL", "https://override.example.com")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Providers["my-node"].URL != "https://override.example.com" {
		t.Errorf("expected env override url, got %q", cfg.Providers["my-node"].URL)
	}
}

func TestLoadConfigWithEnvOverrides_DurationParsing(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  helius:
    url: "https://mainnet.helius-rpc.com/?api-key=test"
`)

	t.Setenv("SLUICE_PROVIDERS_HELIUS_MIN_TIME_BETWEEN_REQUESTS", "750ms")
	t.Setenv("SLUICE_BACKOFF_MAX_DELAY", "2m")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Providers["helius"].MinTimeBetweenRequests != 750*time.Millisecond {
		t.Errorf("expected min time 750ms, got %v", cfg.Providers["helius"].MinTimeBetweenRequests)
	}
	if cfg.Backoff.MaxDelay != 2*time.Minute {
		t.Errorf("expected max delay 2m, got %v", cfg.Backoff.MaxDelay)
	}
}
