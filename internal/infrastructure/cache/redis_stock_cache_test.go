//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) *RedisStockCache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })

	prefix := "test:stock:" + uuid.NewString() + ":"
	return NewRedisStockCacheWithClient(client, prefix, ttl, zap.NewNop())
}

func TestRedisStockCache_RoundTrip(t *testing.T) {
	c := newTestRedisCache(t, time.Minute)
	ctx := context.Background()
	a, b, unknown := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, c.Put(ctx, invoice.StockSnapshot{a: level(10, 2), b: level(3, 1)}))

	snap, err := c.Snapshot(ctx, []uuid.UUID{a, unknown, b})
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.True(t, snap[a].Available.Equal(decimal.NewFromInt(10)))
	assert.True(t, snap[b].MinStock.Equal(decimal.NewFromInt(1)))

	require.NoError(t, c.Invalidate(ctx, a))
	snap, err = c.Snapshot(ctx, []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.NotContains(t, snap, a)
}

func TestRedisStockCache_TTL(t *testing.T) {
	c := newTestRedisCache(t, time.Second)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, c.Put(ctx, invoice.StockSnapshot{id: level(1, 0)}))
	ttl, err := c.client.TTL(ctx, c.key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Second)
}

func TestRedisStockCache_UndecodableEntryIsUnknown(t *testing.T) {
	c := newTestRedisCache(t, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, c.client.Set(ctx, c.key(id), "not-json", time.Minute).Err())

	snap, err := c.Snapshot(ctx, []uuid.UUID{id})
	require.NoError(t, err)
	assert.Empty(t, snap)
}
