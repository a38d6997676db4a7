package governor

import (
	"sort"
	"sync"
	"time"

	"helios-hq/sluice/pkg/config"
	"helios-hq/sluice/pkg/governor/circuit"
	"helios-hq/sluice/pkg/governor/strategy"
)

// Tracker holds the mutable rate limiting state for every configured
// provider. The map is built at construction and replaced wholesale on
// Reseed; individual entries are accessed under their own mutex, so
// admit/record sequences for one provider are linearizable without
// cross-provider contention.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// entry is the per-provider state cell. Its mutex serializes every touch
// of the strategy and breaker, which are not self-locking.
type entry struct {
	mu      sync.Mutex
	strat   strategy.Strategy
	breaker *circuit.Breaker
}

// ProviderSnapshot combines the strategy and breaker views of one provider.
type ProviderSnapshot struct {
	Provider string
	Strategy strategy.Snapshot
	Circuit  circuit.Snapshot
}

// NewTracker builds per-provider state from the configuration. Token
// buckets start at their configured initial balance, adaptive ceilings at
// the provider's per-minute maximum, circuits closed.
func NewTracker(cfg *config.Config, now time.Time) *Tracker {
	t := &Tracker{}
	t.Reseed(cfg, now)
	return t
}

// Reseed rebuilds all provider state from a new configuration, discarding
// accumulated counters, streaks, and breaker states. Called on config hot
// reload.
func (t *Tracker) Reseed(cfg *config.Config, now time.Time) {
	entries := make(map[string]*entry, len(cfg.Providers))
	for name, p := range cfg.Providers {
		cc := cfg.CircuitFor(p)
		entries[name] = &entry{
			strat: buildStrategy(cfg, p, now),
			breaker: circuit.New(circuit.Config{
				FailureThreshold: cc.FailureThreshold,
				ResetTimeout:     cc.ResetTimeout,
				HalfOpenRequests: cc.HalfOpenRequests,
			}),
		}
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
}

// buildStrategy constructs the admission strategy for a provider.
// Validation has already established the invariants here: required
// parameter blocks are present and positive where the strategy needs them.
func buildStrategy(cfg *config.Config, p config.ProviderConfig, now time.Time) strategy.Strategy {
	switch p.Strategy {
	case config.StrategyTokenBucket:
		tb := p.TokenBucket
		return strategy.NewTokenBucket(tb.BucketSize, tb.RefillRatePerSecond, tb.InitialTokens, now)

	case config.StrategyAdaptive:
		a := p.Adaptive
		return strategy.NewAdaptive(strategy.AdaptiveParams{
			SuccessThreshold: a.SuccessThreshold,
			IncreaseFactor:   a.IncreaseFactor,
			DecreaseFactor:   a.DecreaseFactor,
			MinLimit:         a.MinLimit,
			MaxLimit:         a.MaxLimit,
			InitialLimit:     float64(p.MaxRequestsPerMinute),
		})

	case config.StrategyExponentialBackoff:
		b := cfg.BackoffFor(p)
		return strategy.NewBackoff(b.InitialDelay, b.Factor, b.Jitter, b.MaxDelay)

	default:
		return strategy.NewFixed(p.MinTimeBetweenRequests, p.MaxRequestsPerMinute)
	}
}

func (t *Tracker) lookup(provider string) (*entry, bool) {
	t.mu.RLock()
	e, ok := t.entries[provider]
	t.mu.RUnlock()
	return e, ok
}

// TryConsume runs the admission sequence for one request: the circuit
// breaker rules first, then the strategy consumes budget. Providers not
// present in the configuration are unrestricted.
func (t *Tracker) TryConsume(provider string, now time.Time) Verdict {
	e, ok := t.lookup(provider)
	if !ok {
		return Verdict{Allowed: true}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.breaker.Allow(now) {
		return Verdict{Reason: ReasonCircuitOpen}
	}
	if !e.strat.Admit(now) {
		return Verdict{Reason: ReasonRateLimited}
	}
	return Verdict{Allowed: true}
}

// RecordSuccess reports a successful call, resetting failure streaks and
// closing a half-open circuit. It returns the breaker state after
// recording. Unknown providers are a no-op.
func (t *Tracker) RecordSuccess(provider string, now time.Time) circuit.State {
	e, ok := t.lookup(provider)
	if !ok {
		return circuit.StateClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.strat.RecordSuccess(now)
	e.breaker.RecordSuccess()
	return e.breaker.State()
}

// RecordFailure reports a failed call to both the strategy and the
// breaker. It returns the breaker state after recording and whether this
// failure opened the circuit. Unknown providers are a no-op.
func (t *Tracker) RecordFailure(provider string, now time.Time) (circuit.State, bool) {
	e, ok := t.lookup(provider)
	if !ok {
		return circuit.StateClosed, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.breaker.State()
	e.strat.RecordFailure(now)
	e.breaker.RecordFailure(now)
	after := e.breaker.State()
	return after, after == circuit.StateOpen && before != circuit.StateOpen
}

// CircuitState returns the provider's current breaker state.
func (t *Tracker) CircuitState(provider string) (circuit.State, bool) {
	e, ok := t.lookup(provider)
	if !ok {
		return circuit.StateClosed, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.breaker.State(), true
}

// Snapshot returns a combined view of one provider's strategy and breaker
// state.
func (t *Tracker) Snapshot(provider string, now time.Time) (ProviderSnapshot, bool) {
	e, ok := t.lookup(provider)
	if !ok {
		return ProviderSnapshot{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return ProviderSnapshot{
		Provider: provider,
		Strategy: e.strat.Snapshot(now),
		Circuit:  e.breaker.Snapshot(),
	}, true
}

// Snapshots returns views of every provider, sorted by name.
func (t *Tracker) Snapshots(now time.Time) []ProviderSnapshot {
	names := t.Providers()
	out := make([]ProviderSnapshot, 0, len(names))
	for _, name := range names {
		if s, ok := t.Snapshot(name, now); ok {
			out = append(out, s)
		}
	}
	return out
}

// Providers returns the configured provider names sorted alphabetically.
func (t *Tracker) Providers() []string {
	t.mu.RLock()
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	t.mu.RUnlock()

	sort.Strings(names)
	return names
}
