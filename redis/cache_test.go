package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonnyholland/ComposableArchitecturePattern/redis"
	"github.com/jonnyholland/ComposableArchitecturePattern/redis/testutil"
)

func TestCache_StoreLookup(t *testing.T) {
	_, client := testutil.Start(t, redis.Config{})
	c := redis.NewCache(client)
	ctx := context.Background()

	body, ok, err := c.Lookup(ctx, "https://api.example.com/users")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, body)

	require.NoError(t, c.Store(ctx, "https://api.example.com/users", []byte(`[1,2]`), time.Minute))

	body, ok, err = c.Lookup(ctx, "https://api.example.com/users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(body))
}

func TestCache_Expiry(t *testing.T) {
	mini, client := testutil.Start(t, redis.Config{})
	c := redis.NewCache(client)
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "k", []byte("v"), time.Second))
	mini.FastForward(2 * time.Second)

	_, ok, err := c.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "expired key should leave the index on lookup")
}

func TestCache_DefaultTTL(t *testing.T) {
	mini, client := testutil.Start(t, redis.Config{})
	c := redis.NewCache(client, redis.WithDefaultTTL(10*time.Second))
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "k", []byte("v"), 0))
	assert.Equal(t, 10*time.Second, mini.TTL("cap:cache:k"))
}

func TestCache_EvictsOldest(t *testing.T) {
	_, client := testutil.Start(t, redis.Config{MaxEntries: 2, KeyPrefix: "test"})
	clk := clock.NewMock()
	c := redis.NewCache(client, redis.WithClock(clk))
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "a", []byte("1"), time.Minute))
	clk.Add(time.Second)
	require.NoError(t, c.Store(ctx, "b", []byte("2"), time.Minute))
	clk.Add(time.Second)

	// Updating an existing key never evicts.
	require.NoError(t, c.Store(ctx, "b", []byte("2b"), time.Minute))
	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	clk.Add(time.Second)
	require.NoError(t, c.Store(ctx, "c", []byte("3"), time.Minute))

	_, ok, err := c.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "oldest entry should be evicted")

	body, ok, err := c.Lookup(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2b", string(body))

	_, ok, err = c.Lookup(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_ExpiredEntriesFreeCapacity(t *testing.T) {
	mini, client := testutil.Start(t, redis.Config{MaxEntries: 2, KeyPrefix: "test"})
	clk := clock.NewMock()
	c := redis.NewCache(client, redis.WithClock(clk))
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "a", []byte("1"), time.Minute))
	clk.Add(time.Second)
	require.NoError(t, c.Store(ctx, "b", []byte("2"), time.Second))
	clk.Add(time.Second)
	mini.FastForward(2 * time.Second)

	require.NoError(t, c.Store(ctx, "c", []byte("3"), time.Minute))

	body, ok, err := c.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok, "live entry should survive while an expired one holds a slot")
	assert.Equal(t, "1", string(body))

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCache_InvalidateAndClear(t *testing.T) {
	mini, client := testutil.Start(t, redis.Config{})
	c := redis.NewCache(client)
	ctx := context.Background()

	require.NoError(t, mini.Set("unrelated", "keep"))
	require.NoError(t, c.Store(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Store(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, c.Invalidate(ctx, "a"))
	_, ok, err := c.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Clear(ctx))
	_, ok, err = c.Lookup(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mini.Exists("unrelated"))
}

func TestClient_Ping(t *testing.T) {
	_, client := testutil.Start(t, redis.Config{})
	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

func TestConfig(t *testing.T) {
	var cfg redis.Config
	cfg.ApplyDefaults()
	assert.Equal(t, "cap:cache", cfg.KeyPrefix)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.NoError(t, cfg.Validate(), "disabled config is always valid")

	cfg.Enabled = true
	assert.Error(t, cfg.Validate())
	cfg.Addr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
	assert.Contains(t, cfg.Describe(), "localhost:6379")

	_, err := redis.New(redis.Config{}, nil)
	assert.Error(t, err)
}
