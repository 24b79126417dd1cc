// Package testutil starts an in-memory Redis for tests.
//
//	mini, client := testutil.Start(t, redis.Config{MaxEntries: 2})
//	responses := redis.NewCache(client)
package testutil
