// Package cache stores response bodies keyed by request URL with a TTL and
// a bounded number of entries.
package cache

import (
	"context"
	"time"
)

// ResponseCache is a key/value store of response bodies. Implementations
// are safe for concurrent use.
//
// Lookup expires entries lazily: an entry read at or after its expiry is
// removed and reported as a miss. Store evicts the oldest entry only when a
// new key would exceed capacity; updating an existing key never evicts.
type ResponseCache interface {
	Lookup(ctx context.Context, key string) ([]byte, bool, error)
	Store(ctx context.Context, key string, body []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
