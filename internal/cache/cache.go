// Package cache provides the keyed TTL store shared across requests: the
// selection response cache and the increment-or-reset counters used by the
// rate gate. The interface is deliberately small so the in-process store can
// be swapped for Redis in multi-process deployments without touching callers.
package cache

import (
	"context"
	"time"
)

type Store interface {
	// Get returns the stored value and whether the key was present and
	// unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key for ttl, replacing any previous entry
	// wholesale. A non-positive ttl stores without expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Increment atomically bumps a counter, creating it with the given
	// window on first touch and resetting it once the window lapses.
	// Returns the counter value after the bump.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	Ping(ctx context.Context) error
}
