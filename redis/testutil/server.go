package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jonnyholland/ComposableArchitecturePattern/logger"
	"github.com/jonnyholland/ComposableArchitecturePattern/redis"
)

// Start runs miniredis for the duration of t and returns it with a Client
// connected to it. cfg.Addr is overwritten.
func Start(t testing.TB, cfg redis.Config) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mini := miniredis.RunT(t)
	cfg.Enabled = true
	cfg.Addr = mini.Addr()

	rdb := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	client := redis.NewFromClient(rdb, cfg, logger.Nop())
	t.Cleanup(func() { _ = client.Close() })
	return mini, client
}
