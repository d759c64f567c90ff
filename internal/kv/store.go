// Package kv provides the key-value store abstraction backing the snapshot
// cache and the verification-code store. The store is injected everywhere so
// it can be faked in tests and swapped between backends.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is a durable, per-key byte store. A zero TTL means the value never
// expires and is only ever overwritten.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
