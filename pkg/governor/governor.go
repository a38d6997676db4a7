package governor

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"helios-hq/sluice/pkg/cache"
	"helios-hq/sluice/pkg/clock"
	"helios-hq/sluice/pkg/config"
	"helios-hq/sluice/pkg/governor/strategy"
)

// Governor is the admission front door for rate limited upstream
// providers. It owns no rate limiting state itself: admission state lives
// in the Tracker, cached responses in the attached cache.
type Governor struct {
	mu  sync.RWMutex
	cfg *config.Config

	tracker *Tracker
	cache   *cache.Cache
	clk     clock.Clock
	logger  *slog.Logger
	metrics *Metrics
	rng     func() float64
}

// Option configures a Governor.
type Option func(*Governor)

// WithCache attaches a response cache. Without one, cache-eligible
// providers behave as if caching were disabled.
func WithCache(c *cache.Cache) Option {
	return func(g *Governor) { g.cache = c }
}

// WithClock substitutes the time source. Tests drive a clock.Fake.
func WithClock(clk clock.Clock) Option {
	return func(g *Governor) { g.clk = clk }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Governor) { g.logger = logger }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(g *Governor) { g.metrics = m }
}

// New creates a Governor over a loaded and validated configuration.
func New(cfg *config.Config, opts ...Option) *Governor {
	g := &Governor{
		cfg:    cfg,
		clk:    clock.System(),
		logger: slog.Default(),
		rng:    rand.Float64,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.logger = g.logger.With("component", "governor")
	g.tracker = NewTracker(cfg, g.clk.Now())
	return g
}

// Admit decides whether a request to the provider may proceed right now.
// The checks run in order: response cache, circuit breaker, admission
// strategy. A cache hit consumes no budget and carries the cached body on
// the Decision. Providers absent from the configuration are unrestricted.
func (g *Governor) Admit(ctx context.Context, provider, method string, params any) Decision {
	start := time.Now()
	now := g.clk.Now()

	p, known := g.provider(provider)
	label := provider
	if !known {
		label = labelUnconfigured
	}
	defer func() {
		g.metrics.ObserveAdmitDuration(label, time.Since(start).Seconds())
	}()

	if known && p.UseCaching && g.cache != nil {
		if body, ok := g.lookupCache(ctx, provider, method, params); ok {
			g.metrics.RecordCacheHit(provider)
			g.metrics.RecordAdmission(label, true)
			return Decision{Provider: provider, Allowed: true, Cached: body}
		}
		g.metrics.RecordCacheMiss(provider)
	}

	v := g.tracker.TryConsume(provider, now)
	g.metrics.RecordAdmission(label, v.Allowed)
	if !v.Allowed {
		g.metrics.RecordDenial(provider, v.Reason)
		g.logger.Debug("request denied",
			"provider", provider,
			"method", method,
			"reason", string(v.Reason),
		)
		return Decision{Provider: provider, Reason: v.Reason}
	}

	return Decision{Provider: provider, Allowed: true}
}

// RecordOutcome feeds the result of an upstream call back into the
// provider's strategy and circuit breaker. A 429 response is logged
// distinctly but still counts as a failure. Unknown providers are ignored.
func (g *Governor) RecordOutcome(ctx context.Context, provider string, outcome Outcome) {
	if _, known := g.provider(provider); !known {
		return
	}

	now := g.clk.Now()

	if outcome.Success {
		state := g.tracker.RecordSuccess(provider, now)
		g.metrics.RecordOutcome(provider, true)
		g.metrics.UpdateCircuitState(provider, state)
		return
	}

	if outcome.RateLimited() {
		g.logger.Warn("provider rate limited upstream",
			"provider", provider,
			"status", outcome.StatusCode,
		)
		g.metrics.RecordUpstreamRateLimited(provider)
	}

	state, opened := g.tracker.RecordFailure(provider, now)
	g.metrics.RecordOutcome(provider, false)
	g.metrics.UpdateCircuitState(provider, state)
	if opened {
		g.logger.Warn("circuit opened",
			"provider", provider,
			"status", outcome.StatusCode,
		)
	}
}

// CacheResponse stores a response body for a cache-eligible request. It is
// a no-op when the provider does not use caching or no cache is attached.
func (g *Governor) CacheResponse(ctx context.Context, provider, method string, params any, response []byte) {
	p, known := g.provider(provider)
	if !known || !p.UseCaching || p.CacheTime <= 0 || g.cache == nil {
		return
	}

	key, err := cache.Fingerprint(provider, method, params)
	if err != nil {
		g.logger.Debug("request fingerprint failed",
			"provider", provider,
			"method", method,
			"error", err,
		)
		return
	}

	if err := g.cache.Put(ctx, key, response, p.CacheTime); err != nil {
		g.logger.Warn("response cache write failed",
			"provider", provider,
			"method", method,
			"error", err,
		)
	}
}

// CachedResponse returns the live cached response for a request, if any.
func (g *Governor) CachedResponse(ctx context.Context, provider, method string, params any) ([]byte, bool) {
	p, known := g.provider(provider)
	if !known || !p.UseCaching || g.cache == nil {
		return nil, false
	}
	return g.lookupCache(ctx, provider, method, params)
}

// NextRetryDelay computes how long a caller should wait before retry
// attempt (1-based). The exponential formula uses the provider's
// exponential_backoff parameters when configured, the global backoff
// section otherwise, regardless of the provider's admission strategy.
func (g *Governor) NextRetryDelay(provider string, attempt int) time.Duration {
	g.mu.RLock()
	cfg := g.cfg
	g.mu.RUnlock()

	p, _ := cfg.Provider(provider)
	b := cfg.BackoffFor(p)
	return strategy.Delay(b.InitialDelay, b.Factor, b.Jitter, b.MaxDelay, attempt, g.rng)
}

// ApplyConfig swaps in a new configuration and rebuilds all provider
// state. Accumulated counters, streaks, and breaker states are discarded,
// matching a process restart. The config watcher calls this on reload.
func (g *Governor) ApplyConfig(cfg *config.Config) {
	now := g.clk.Now()

	g.mu.Lock()
	g.cfg = cfg
	g.mu.Unlock()

	g.tracker.Reseed(cfg, now)
	g.logger.Info("configuration applied", "providers", len(cfg.Providers))
}

// Snapshot returns the current state of one provider.
func (g *Governor) Snapshot(provider string) (ProviderSnapshot, bool) {
	return g.tracker.Snapshot(provider, g.clk.Now())
}

// Snapshots returns the current state of every configured provider,
// sorted by name.
func (g *Governor) Snapshots() []ProviderSnapshot {
	return g.tracker.Snapshots(g.clk.Now())
}

// Providers returns the configured provider names sorted alphabetically.
func (g *Governor) Providers() []string {
	return g.tracker.Providers()
}

// provider reads the provider's configuration under the config lock.
func (g *Governor) provider(name string) (config.ProviderConfig, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cfg.Provider(name)
}

// lookupCache fingerprints the request and consults the cache.
func (g *Governor) lookupCache(ctx context.Context, provider, method string, params any) ([]byte, bool) {
	key, err := cache.Fingerprint(provider, method, params)
	if err != nil {
		g.logger.Debug("request fingerprint failed",
			"provider", provider,
			"method", method,
			"error", err,
		)
		return nil, false
	}
	return g.cache.Get(ctx, key)
}
