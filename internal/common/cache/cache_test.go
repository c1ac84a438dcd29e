package cache

import (
	"context"
	"testing"
	"time"

	platformredis "giveaway-offers-backend/internal/platform/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newRedisCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := platformredis.NewClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(client), mr
}

func caches(t *testing.T, fn func(t *testing.T, c Cache)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
	t.Run("redis", func(t *testing.T) {
		c, _ := newRedisCache(t)
		fn(t, c)
	})
}

func TestSetGetDelete(t *testing.T) {
	caches(t, func(t *testing.T, c Cache) {
		ctx := context.Background()

		var got payload
		assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)

		require.NoError(t, c.Set(ctx, "k", payload{Name: "draw", Count: 3}, time.Minute))
		require.NoError(t, c.Get(ctx, "k", &got))
		assert.Equal(t, payload{Name: "draw", Count: 3}, got)

		require.NoError(t, c.Delete(ctx, "k"))
		assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
	})
}

func TestSetRejectsUnmarshalableValue(t *testing.T) {
	caches(t, func(t *testing.T, c Cache) {
		err := c.Set(context.Background(), "k", make(chan int), time.Minute)
		assert.Error(t, err)
	})
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "short", 1, time.Minute))
	require.NoError(t, m.Set(ctx, "forever", 2, 0))

	now = now.Add(2 * time.Minute)

	var v int
	assert.ErrorIs(t, m.Get(ctx, "short", &v), ErrMiss)
	require.NoError(t, m.Get(ctx, "forever", &v))
	assert.Equal(t, 2, v)
}

func TestMemorySetSweepsExpired(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for _, key := range []string{"draw:p1:a", "draw:p1:b", "draw:p2:c"} {
		require.NoError(t, m.Set(ctx, key, 1, time.Minute))
	}
	require.NoError(t, m.Set(ctx, "forever", 1, 0))
	assert.Equal(t, 4, m.Len())

	// never read again; the next Set after expiry drops them
	now = now.Add(2 * time.Minute)
	require.NoError(t, m.Set(ctx, "draw:p3:d", 1, time.Minute))
	assert.Equal(t, 2, m.Len())

	var v int
	require.NoError(t, m.Get(ctx, "forever", &v))
	require.NoError(t, m.Get(ctx, "draw:p3:d", &v))
}

func TestRedisExpiry(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	mr.FastForward(2 * time.Minute)

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrMiss)
}
