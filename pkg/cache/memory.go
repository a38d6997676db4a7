package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation.
// It is the default backend and suitable for single-process deployments
// that do not need cached responses to survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
	}
}

// Put stores an entry, replacing any existing entry with the same key.
func (m *MemoryStore) Put(_ context.Context, entry Entry) error {
	// Copy the value so later mutation by the caller cannot corrupt
	// the stored entry.
	value := make([]byte, len(entry.Value))
	copy(value, entry.Value)
	entry.Value = value

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.Key] = entry
	return nil
}

// Get retrieves an entry by key. Returns ErrNotFound if no entry exists.
func (m *MemoryStore) Get(_ context.Context, key string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return Entry{}, ErrNotFound
	}

	// Return a copy so callers cannot mutate the stored value.
	value := make([]byte, len(entry.Value))
	copy(value, entry.Value)
	entry.Value = value

	return entry, nil
}

// Delete removes an entry by key.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Sweep removes every entry expired at the given instant.
func (m *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.entries {
		if entry.Expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of entries currently held.
func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries), nil
}

// Close releases resources. For the memory store this is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
