package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get when no entry exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// Entry is a stored response together with its lifetime bounds.
type Entry struct {
	// Key is the fingerprint the entry is stored under.
	Key string

	// Value is the cached response payload.
	Value []byte

	// StoredAt is when the entry was written.
	StoredAt time.Time

	// ExpiresAt is when the entry stops being served.
	ExpiresAt time.Time
}

// Expired reports whether the entry has reached its expiry instant.
// An entry expires exactly at ExpiresAt, not after it.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store defines the persistence contract for cached responses.
// Implementations must be thread-safe. Stores do not interpret expiry;
// they only hold entries and remove them when asked. Expiry decisions
// belong to the Cache wrapper so that all backends age identically.
type Store interface {
	// Put stores an entry, replacing any existing entry with the same key.
	Put(ctx context.Context, entry Entry) error

	// Get retrieves an entry by key.
	// Returns ErrNotFound if no entry exists.
	Get(ctx context.Context, key string) (Entry, error)

	// Delete removes an entry by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Sweep removes every entry that is expired at the given instant and
	// returns the number removed.
	Sweep(ctx context.Context, now time.Time) (int, error)

	// Len returns the number of entries currently held, expired or not.
	Len(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}
