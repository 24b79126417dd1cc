package redis

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jonnyholland/ComposableArchitecturePattern/cache"
)

const (
	defaultKeyPrefix = "cap:cache"
	indexSuffix      = ":index"
)

// storeScript writes one entry and, for a key not yet indexed, drops index
// members whose entry already expired, then pops the oldest indexed entries
// until there is room.
//
// KEYS[1] entry key, KEYS[2] index key
// ARGV[1] body, ARGV[2] ttl in ms, ARGV[3] storedAt score, ARGV[4] max entries
var storeScript = goredis.NewScript(`
local indexed = redis.call('ZSCORE', KEYS[2], KEYS[1])
local limit = tonumber(ARGV[4])
if not indexed and limit > 0 then
  for _, member in ipairs(redis.call('ZRANGE', KEYS[2], 0, -1)) do
    if redis.call('EXISTS', member) == 0 then
      redis.call('ZREM', KEYS[2], member)
    end
  end
  while redis.call('ZCARD', KEYS[2]) >= limit do
    local oldest = redis.call('ZPOPMIN', KEYS[2])
    if #oldest == 0 then break end
    redis.call('DEL', oldest[1])
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
redis.call('ZADD', KEYS[2], ARGV[3], KEYS[1])
return 1
`)

// Cache is a cache.ResponseCache stored in Redis.
type Cache struct {
	rdb        goredis.UniversalClient
	prefix     string
	maxEntries int
	defaultTTL time.Duration
	clock      clock.Clock
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithMaxEntries bounds the number of entries. Zero is unbounded.
func WithMaxEntries(n int) CacheOption {
	return func(c *Cache) { c.maxEntries = n }
}

// WithDefaultTTL sets the TTL used when Store receives none.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) { c.defaultTTL = ttl }
}

// WithClock sets the time source used to order entries for eviction.
func WithClock(clk clock.Clock) CacheOption {
	return func(c *Cache) { c.clock = clk }
}

// NewCache creates a cache on client using its key prefix and max entries.
func NewCache(client *Client, opts ...CacheOption) *Cache {
	cfg := client.Config()
	c := &Cache{
		rdb:        client.Unwrap(),
		prefix:     cfg.KeyPrefix,
		maxEntries: cfg.MaxEntries,
		defaultTTL: cache.DefaultTTL,
		clock:      clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) key(url string) string { return c.prefix + ":" + url }
func (c *Cache) index() string         { return c.prefix + indexSuffix }

// Lookup implements cache.ResponseCache. Redis expires entries; a miss
// also drops the key from the eviction index.
func (c *Cache) Lookup(ctx context.Context, url string) ([]byte, bool, error) {
	k := c.key(url)
	body, err := c.rdb.Get(ctx, k).Bytes()
	if stderrors.Is(err, goredis.Nil) {
		if err := c.rdb.ZRem(ctx, c.index(), k).Err(); err != nil {
			return nil, false, fmt.Errorf("redis cache: prune index: %w", err)
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis cache: get: %w", err)
	}
	return body, true, nil
}

// Store implements cache.ResponseCache.
func (c *Cache) Store(ctx context.Context, url string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	ms := ttl.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	score := c.clock.Now().UnixMicro()

	err := storeScript.Run(ctx, c.rdb, []string{c.key(url), c.index()}, body, ms, score, c.maxEntries).Err()
	if err != nil && !stderrors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis cache: store: %w", err)
	}
	return nil
}

// Invalidate implements cache.ResponseCache.
func (c *Cache) Invalidate(ctx context.Context, url string) error {
	k := c.key(url)
	_, err := c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, k)
		p.ZRem(ctx, c.index(), k)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis cache: invalidate: %w", err)
	}
	return nil
}

// Clear implements cache.ResponseCache. Only indexed entries are removed.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.rdb.ZRange(ctx, c.index(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("redis cache: list: %w", err)
	}
	keys = append(keys, c.index())
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis cache: clear: %w", err)
	}
	return nil
}

// Len returns the number of indexed entries.
func (c *Cache) Len(ctx context.Context) (int64, error) {
	return c.rdb.ZCard(ctx, c.index()).Result()
}

var _ cache.ResponseCache = (*Cache)(nil)
