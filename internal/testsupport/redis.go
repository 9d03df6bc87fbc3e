package testsupport

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"lorecast/internal/queue"
	"lorecast/internal/store"
)

// NewStore returns a store backed by an in-process Redis that is torn down
// with the test.
func NewStore(t testing.TB) *store.Client {
	t.Helper()
	st, _ := NewStoreAndQueue(t)
	return st
}

// NewStoreAndQueue returns a store and queue sharing one in-process Redis.
func NewStoreAndQueue(t testing.TB) (*store.Client, *queue.Client) {
	t.Helper()

	mini := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
	})
	return store.NewFromRedis(rdb), queue.NewClient(rdb, "lorecast_test")
}
