// Package redis provides a go-redis client wrapper and a Redis-backed
// response cache that can be shared by several processes.
//
// Cache stores each body under "<prefix>:<url>" with a Redis expiry and
// indexes the keys in a sorted set scored by store time, so a new key at
// capacity evicts the oldest entry exactly like the in-memory cache.
//
//	client, err := redis.New(redis.Config{Enabled: true, Addr: "localhost:6379"}, log)
//	responses := redis.NewCache(client, redis.WithMaxEntries(500))
//	pipeline, err := server.New(cfg, server.WithCache(responses), ...)
package redis
