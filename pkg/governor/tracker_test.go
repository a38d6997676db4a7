package governor

import (
	"testing"
	"time"

	"helios-hq/sluice/pkg/config"
	"helios-hq/sluice/pkg/governor/circuit"
	"helios-hq/sluice/pkg/governor/strategy"
)

func trackerConfig() *config.Config {
	return &config.Config{
		Providers: map[string]config.ProviderConfig{
			"helius": {
				URL:      "https://mainnet.helius-rpc.com",
				Strategy: config.StrategyTokenBucket,
				TokenBucket: &config.TokenBucketConfig{
					BucketSize:          2,
					RefillRatePerSecond: 1,
					InitialTokens:       2,
				},
			},
			"quicknode": {
				URL:                  "https://example.solana-mainnet.quiknode.pro",
				Strategy:             config.StrategyFixed,
				MaxRequestsPerMinute: 100,
			},
		},
		Circuit: config.CircuitConfig{
			FailureThreshold: 3,
			ResetTimeout:     time.Second,
			HalfOpenRequests: 1,
		},
		Backoff: config.BackoffConfig{
			InitialDelay: 100 * time.Millisecond,
			Factor:       2,
			MaxDelay:     time.Second,
		},
	}
}

// ============================================================================
// Admission Tests
// ============================================================================

func TestTracker_UnknownProviderUnrestricted(t *testing.T) {
	tr := NewTracker(trackerConfig(), time.Unix(100, 0))
	now := time.Unix(100, 0)

	for i := 0; i < 50; i++ {
		v := tr.TryConsume("nobody", now)
		if !v.Allowed {
			t.Fatalf("Expected unknown provider to be unrestricted, denied at %d", i+1)
		}
		if v.Reason != "" {
			t.Fatalf("Expected empty reason for unknown provider, got %q", v.Reason)
		}
	}

	// Outcome recording for unknown providers must not panic or create state.
	if state := tr.RecordSuccess("nobody", now); state != circuit.StateClosed {
		t.Errorf("Expected closed state for unknown provider, got %v", state)
	}
	if state, opened := tr.RecordFailure("nobody", now); state != circuit.StateClosed || opened {
		t.Errorf("Expected (closed, false) for unknown provider, got (%v, %v)", state, opened)
	}
	if _, ok := tr.Snapshot("nobody", now); ok {
		t.Error("Expected no snapshot for unknown provider")
	}
	if _, ok := tr.CircuitState("nobody"); ok {
		t.Error("Expected no circuit state for unknown provider")
	}
}

func TestTracker_TryConsume_RateLimited(t *testing.T) {
	tr := NewTracker(trackerConfig(), time.Unix(100, 0))
	now := time.Unix(100, 0)

	// Bucket holds 2 tokens.
	for i := 0; i < 2; i++ {
		if v := tr.TryConsume("helius", now); !v.Allowed {
			t.Fatalf("Expected admission %d with tokens available", i+1)
		}
	}

	v := tr.TryConsume("helius", now)
	if v.Allowed {
		t.Fatal("Expected denial with an empty bucket")
	}
	if v.Reason != ReasonRateLimited {
		t.Errorf("Expected reason %q, got %q", ReasonRateLimited, v.Reason)
	}

	// One token refills per second.
	if v := tr.TryConsume("helius", now.Add(time.Second)); !v.Allowed {
		t.Error("Expected admission after refill")
	}
}

func TestTracker_TryConsume_CircuitOpenWinsOverRateLimit(t *testing.T) {
	tr := NewTracker(trackerConfig(), time.Unix(100, 0))
	now := time.Unix(100, 0)

	// Drain the bucket, then open the circuit.
	tr.TryConsume("helius", now)
	tr.TryConsume("helius", now)
	for i := 0; i < 3; i++ {
		tr.RecordFailure("helius", now)
	}

	// Both denial conditions hold; the breaker is checked first.
	v := tr.TryConsume("helius", now)
	if v.Allowed {
		t.Fatal("Expected denial with an open circuit")
	}
	if v.Reason != ReasonCircuitOpen {
		t.Errorf("Expected reason %q, got %q", ReasonCircuitOpen, v.Reason)
	}
}

// ============================================================================
// Outcome Recording Tests
// ============================================================================

func TestTracker_RecordFailure_ReportsOpening(t *testing.T) {
	tr := NewTracker(trackerConfig(), time.Unix(100, 0))
	now := time.Unix(100, 0)

	for i := 0; i < 2; i++ {
		state, opened := tr.RecordFailure("quicknode", now)
		if state != circuit.StateClosed || opened {
			t.Fatalf("Expected (closed, false) below threshold, got (%v, %v)", state, opened)
		}
	}

	// The third failure crosses the threshold.
	state, opened := tr.RecordFailure("quicknode", now)
	if state != circuit.StateOpen {
		t.Errorf("Expected open state at threshold, got %v", state)
	}
	if !opened {
		t.Error("Expected opening to be reported exactly at the threshold")
	}

	// Further failures keep it open but do not report opening again.
	state, opened = tr.RecordFailure("quicknode", now)
	if state != circuit.StateOpen || opened {
		t.Errorf("Expected (open, false) past threshold, got (%v, %v)", state, opened)
	}
}

func TestTracker_RecordSuccess_ClosesHalfOpenCircuit(t *testing.T) {
	tr := NewTracker(trackerConfig(), time.Unix(100, 0))
	now := time.Unix(100, 0)

	for i := 0; i < 3; i++ {
		tr.RecordFailure("quicknode", now)
	}
	if v := tr.TryConsume("quicknode", now); v.Reason != ReasonCircuitOpen {
		t.Fatalf("Expected circuit_open denial, got %+v", v)
	}

	// After the reset timeout a trial request is admitted.
	later := now.Add(time.Second)
	if v := tr.TryConsume("quicknode", later); !v.Allowed {
		t.Fatal("Expected half-open trial admission after reset timeout")
	}

	if state := tr.RecordSuccess("quicknode", later); state != circuit.StateClosed {
		t.Errorf("Expected trial success to close the circuit, got %v", state)
	}
	if v := tr.TryConsume("quicknode", later); !v.Allowed {
		t.Error("Expected admission with a closed circuit")
	}
}

// ============================================================================
// Reseed Tests
// ============================================================================

func TestTracker_Reseed_DiscardsState(t *testing.T) {
	cfg := trackerConfig()
	tr := NewTracker(cfg, time.Unix(100, 0))
	now := time.Unix(100, 0)

	tr.TryConsume("helius", now)
	tr.TryConsume("helius", now)
	if v := tr.TryConsume("helius", now); v.Allowed {
		t.Fatal("Expected empty bucket before reseed")
	}

	tr.Reseed(cfg, now)

	if v := tr.TryConsume("helius", now); !v.Allowed {
		t.Error("Expected a full bucket after reseed")
	}
}

func TestTracker_Reseed_NewProviderSet(t *testing.T) {
	tr := NewTracker(trackerConfig(), time.Unix(100, 0))
	now := time.Unix(100, 0)

	next := trackerConfig()
	delete(next.Providers, "helius")
	next.Providers["triton"] = config.ProviderConfig{
		URL:                  "https://triton.example.com",
		Strategy:             config.StrategyFixed,
		MaxRequestsPerMinute: 1,
	}
	tr.Reseed(next, now)

	// Removed providers become unrestricted, added ones governed.
	if v := tr.TryConsume("helius", now); !v.Allowed {
		t.Error("Expected removed provider to be unrestricted")
	}
	tr.TryConsume("triton", now)
	if v := tr.TryConsume("triton", now); v.Allowed {
		t.Error("Expected added provider to be governed")
	}

	want := []string{"quicknode", "triton"}
	got := tr.Providers()
	if len(got) != len(want) {
		t.Fatalf("Expected %d providers, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected provider %q at index %d, got %q", want[i], i, got[i])
		}
	}
}

// ============================================================================
// Strategy Selection Tests
// ============================================================================

func TestTracker_StrategySelection(t *testing.T) {
	tests := []struct {
		name     string
		provider config.ProviderConfig
		want     string
	}{
		{
			name: "token bucket",
			provider: config.ProviderConfig{
				Strategy: config.StrategyTokenBucket,
				TokenBucket: &config.TokenBucketConfig{
					BucketSize:          5,
					RefillRatePerSecond: 1,
					InitialTokens:       5,
				},
			},
			want: strategy.NameTokenBucket,
		},
		{
			name: "adaptive",
			provider: config.ProviderConfig{
				Strategy:             config.StrategyAdaptive,
				MaxRequestsPerMinute: 120,
				Adaptive: &config.AdaptiveConfig{
					SuccessThreshold: 10,
					IncreaseFactor:   0.25,
					DecreaseFactor:   0.5,
					MinLimit:         10,
					MaxLimit:         300,
				},
			},
			want: strategy.NameAdaptive,
		},
		{
			name: "exponential backoff",
			provider: config.ProviderConfig{
				Strategy: config.StrategyExponentialBackoff,
			},
			want: strategy.NameBackoff,
		},
		{
			name: "fixed",
			provider: config.ProviderConfig{
				Strategy:             config.StrategyFixed,
				MaxRequestsPerMinute: 60,
			},
			want: strategy.NameFixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := trackerConfig()
			cfg.Providers = map[string]config.ProviderConfig{"p": tt.provider}
			tr := NewTracker(cfg, time.Unix(100, 0))

			s, ok := tr.Snapshot("p", time.Unix(100, 0))
			if !ok {
				t.Fatal("Expected snapshot for configured provider")
			}
			if s.Strategy.Strategy != tt.want {
				t.Errorf("Expected strategy %q, got %q", tt.want, s.Strategy.Strategy)
			}
		})
	}
}

func TestTracker_AdaptiveStartsAtProviderCeiling(t *testing.T) {
	cfg := trackerConfig()
	cfg.Providers = map[string]config.ProviderConfig{
		"p": {
			Strategy:             config.StrategyAdaptive,
			MaxRequestsPerMinute: 120,
			Adaptive: &config.AdaptiveConfig{
				SuccessThreshold: 10,
				IncreaseFactor:   0.25,
				DecreaseFactor:   0.5,
				MinLimit:         10,
				MaxLimit:         300,
			},
		},
	}
	tr := NewTracker(cfg, time.Unix(100, 0))

	s, _ := tr.Snapshot("p", time.Unix(100, 0))
	if s.Strategy.CurrentLimit != 120 {
		t.Errorf("Expected adaptive ceiling to start at 120, got %f", s.Strategy.CurrentLimit)
	}
}

func TestTracker_CircuitOverridePerProvider(t *testing.T) {
	cfg := trackerConfig()
	p := cfg.Providers["quicknode"]
	p.Circuit = &config.CircuitConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Second,
		HalfOpenRequests: 1,
	}
	cfg.Providers["quicknode"] = p
	tr := NewTracker(cfg, time.Unix(100, 0))
	now := time.Unix(100, 0)

	// The override threshold of 1 opens immediately; the global threshold
	// of 3 still applies to the other provider.
	if state, opened := tr.RecordFailure("quicknode", now); state != circuit.StateOpen || !opened {
		t.Errorf("Expected override threshold to open on first failure, got (%v, %v)", state, opened)
	}
	if state, opened := tr.RecordFailure("helius", now); state != circuit.StateClosed || opened {
		t.Errorf("Expected global threshold to stay closed, got (%v, %v)", state, opened)
	}
}

// ============================================================================
// Snapshot Tests
// ============================================================================

func TestTracker_Snapshot(t *testing.T) {
	tr := NewTracker(trackerConfig(), time.Unix(100, 0))
	now := time.Unix(100, 0)

	tr.TryConsume("helius", now)

	s, ok := tr.Snapshot("helius", now)
	if !ok {
		t.Fatal("Expected snapshot for configured provider")
	}
	if s.Provider != "helius" {
		t.Errorf("Expected provider name helius, got %q", s.Provider)
	}
	if s.Strategy.Tokens != 1 {
		t.Errorf("Expected 1 token after one admission, got %f", s.Strategy.Tokens)
	}
	if s.Circuit.State != circuit.StateClosed {
		t.Errorf("Expected closed circuit, got %v", s.Circuit.State)
	}
}

func TestTracker_Snapshots_SortedByName(t *testing.T) {
	tr := NewTracker(trackerConfig(), time.Unix(100, 0))

	snaps := tr.Snapshots(time.Unix(100, 0))
	if len(snaps) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].Provider != "helius" || snaps[1].Provider != "quicknode" {
		t.Errorf("Expected snapshots sorted by name, got [%s, %s]",
			snaps[0].Provider, snaps[1].Provider)
	}
}

func TestTracker_Providers_Sorted(t *testing.T) {
	cfg := trackerConfig()
	cfg.Providers["alchemy"] = config.ProviderConfig{
		URL:      "https://solana-mainnet.g.alchemy.com",
		Strategy: config.StrategyFixed,
	}
	tr := NewTracker(cfg, time.Unix(100, 0))

	want := []string{"alchemy", "helius", "quicknode"}
	got := tr.Providers()
	if len(got) != len(want) {
		t.Fatalf("Expected %d providers, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected provider %q at index %d, got %q", want[i], i, got[i])
		}
	}
}
