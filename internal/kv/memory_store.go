package kv

import (
	"context"
	"sync"
	"time"
)

// entry is a stored value with optional expiration.
type entry struct {
	value     []byte
	expiresAt time.Time // zero = never expires
}

// isExpired checks if the entry has expired.
func (e *entry) isExpired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore implements Store with an in-process map. Used in tests and as
// the fast tier in front of Redis.
type MemoryStore struct {
	entries  map[string]*entry
	mu       sync.RWMutex
	stopChan chan struct{}
}

// NewMemoryStore creates a new in-memory store with a background sweeper for
// expired entries.
func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		entries:  make(map[string]*entry),
		stopChan: make(chan struct{}),
	}

	go ms.sweep()

	return ms
}

// Get retrieves a value, treating expired entries as missing.
func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	e, exists := ms.entries[key]
	if !exists || e.isExpired(time.Now()) {
		return nil, ErrNotFound
	}
	return e.value, nil
}

// Set stores a value. A zero TTL keeps it until overwritten or deleted.
func (ms *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	e := &entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	ms.entries[key] = e
	return nil
}

// Delete removes a key.
func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.entries, key)
	return nil
}

// sweep periodically removes expired entries.
func (ms *MemoryStore) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			ms.mu.Lock()
			for key, e := range ms.entries {
				if e.isExpired(now) {
					delete(ms.entries, key)
				}
			}
			ms.mu.Unlock()
		case <-ms.stopChan:
			return
		}
	}
}

// Close stops the sweeper goroutine.
func (ms *MemoryStore) Close() {
	close(ms.stopChan)
}

// Len returns the current number of stored entries.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.entries)
}
