package config

import (
	"testing"
	"time"
)

func TestConfig_Provider(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"helius": {URL: "https://mainnet.helius-rpc.com"},
		},
	}

	p, ok := cfg.Provider("helius")
	if !ok {
		t.Fatal("expected helius provider to be found")
	}
	if p.URL != "https://mainnet.helius-rpc.com" {
		t.Errorf("unexpected provider url %q", p.URL)
	}

	if _, ok := cfg.Provider("unknown"); ok {
		t.Error("expected unknown provider to not be found")
	}
}

func TestConfig_CircuitFor(t *testing.T) {
	cfg := &Config{
		Circuit: CircuitConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
			HalfOpenRequests: 1,
		},
	}

	global := cfg.CircuitFor(ProviderConfig{})
	if global.FailureThreshold != 5 {
		t.Errorf("expected global failure threshold 5, got %d", global.FailureThreshold)
	}

	override := cfg.CircuitFor(ProviderConfig{
		Circuit: &CircuitConfig{
			FailureThreshold: 2,
			ResetTimeout:     time.Second,
			HalfOpenRequests: 3,
		},
	})
	if override.FailureThreshold != 2 {
		t.Errorf("expected override failure threshold 2, got %d", override.FailureThreshold)
	}
	if override.HalfOpenRequests != 3 {
		t.Errorf("expected override half open requests 3, got %d", override.HalfOpenRequests)
	}
}

func TestConfig_BackoffFor(t *testing.T) {
	cfg := &Config{
		Backoff: BackoffConfig{
			InitialDelay: 500 * time.Millisecond,
			Factor:       2.0,
			Jitter:       0.2,
			MaxDelay:     30 * time.Second,
		},
	}

	global := cfg.BackoffFor(ProviderConfig{})
	if global.InitialDelay != 500*time.Millisecond {
		t.Errorf("expected global initial delay 500ms, got %v", global.InitialDelay)
	}

	override := cfg.BackoffFor(ProviderConfig{
		ExponentialBackoff: &BackoffConfig{
			InitialDelay: 100 * time.Millisecond,
			Factor:       1.5,
			MaxDelay:     time.Second,
		},
	})
	if override.InitialDelay != 100*time.Millisecond {
		t.Errorf("expected override initial delay 100ms, got %v", override.InitialDelay)
	}
	if override.Factor != 1.5 {
		t.Errorf("expected override factor 1.5, got %v", override.Factor)
	}
}
