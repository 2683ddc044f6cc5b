package cache

import (
	"context"
	"time"
)

// Cache is the read-side cache used by the catalog and review listings.
// Implementations must treat a missing key as a miss, not an error.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found = false means a miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// SetIfUnchanged stores value only while the counter at guardKey still
	// reads guard (a missing counter reads as 0). stored = false means the
	// counter moved and nothing was written.
	SetIfUnchanged(ctx context.Context, guardKey string, guard int64, key string, value interface{}, ttl time.Duration) (stored bool, err error)

	// Increment bumps the integer counter at key, creating it at 1.
	Increment(ctx context.Context, key string) (int64, error)

	Delete(ctx context.Context, keys ...string) error

	// DeletePattern evicts every key matching a glob pattern, e.g. "books:all:*".
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error
}
