package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"helios-hq/sluice/pkg/clock"
)

// Cache serves previously fetched provider responses so repeated calls
// inside an entry's lifetime never reach the upstream. Expiry is lazy:
// entries are checked against the clock when read, and an expired entry
// is treated as absent and removed. A Sweeper can reclaim expired
// entries in bulk for long-running processes.
type Cache struct {
	store  Store
	clk    clock.Clock
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for expiry decisions.
// Default: the system clock.
func WithClock(clk clock.Clock) Option {
	return func(c *Cache) {
		c.clk = clk
	}
}

// WithLogger sets the logger for cache events.
// Default: slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a Cache backed by the given store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		clk:    clock.System(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put stores a response under the given key for the given lifetime.
// Entries with a non-positive ttl are not stored.
func (c *Cache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.logger.Debug("skipping cache write, non-positive ttl",
			"key", key,
			"ttl", ttl,
		)
		return nil
	}

	now := c.clk.Now()
	entry := Entry{
		Key:       key,
		Value:     value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	if err := c.store.Put(ctx, entry); err != nil {
		return err
	}

	c.logger.Debug("cached response",
		"key", key,
		"bytes", len(value),
		"expires_at", entry.ExpiresAt,
	)
	return nil
}

// Get retrieves the cached response for a key. The second return value
// reports whether a live entry was found. Expired entries are misses
// and are removed on the way out.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	entry, ok := c.lookup(ctx, key)
	if !ok {
		return nil, false
	}
	return entry.Value, true
}

// Exists reports whether a live entry is stored under the key.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	_, ok := c.lookup(ctx, key)
	return ok
}

// lookup fetches an entry and applies lazy expiry.
func (c *Cache) lookup(ctx context.Context, key string) (Entry, bool) {
	entry, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return Entry{}, false
	}
	if err != nil {
		c.logger.Warn("cache read failed",
			"key", key,
			"error", err,
		)
		return Entry{}, false
	}

	if entry.Expired(c.clk.Now()) {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("failed to remove expired entry",
				"key", key,
				"error", err,
			)
		}
		return Entry{}, false
	}

	return entry, true
}

// Sweep removes every expired entry from the store and returns the
// number removed.
func (c *Cache) Sweep(ctx context.Context) (int, error) {
	return c.store.Sweep(ctx, c.clk.Now())
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len(ctx context.Context) (int, error) {
	return c.store.Len(ctx)
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
