package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// DefaultKeyPrefix namespaces stock keys in a shared Redis
const DefaultKeyPrefix = "invoice:stock:"

// RedisStockCache stores one JSON encoded stock level per item key, each
// with its own TTL, so replicas share what any of them has fetched.
type RedisStockCache struct {
	client     *redis.Client
	ownsClient bool
	prefix     string
	ttl        time.Duration
	logger     *zap.Logger
}

// NewRedisStockCache connects to Redis and verifies the connection
func NewRedisStockCache(ctx context.Context, opts *redis.Options, prefix string, ttl time.Duration, logger *zap.Logger) (*RedisStockCache, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisStockCacheWithClient(client, prefix, ttl, logger)
	c.ownsClient = true
	return c, nil
}

// NewRedisStockCacheWithClient wraps an existing client. The caller keeps
// ownership of the client.
func NewRedisStockCacheWithClient(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisStockCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultStockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStockCache{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *RedisStockCache) key(id uuid.UUID) string {
	return c.prefix + id.String()
}

// Put writes the levels in one pipeline
func (c *RedisStockCache) Put(ctx context.Context, levels invoice.StockSnapshot) error {
	if len(levels) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for id, level := range levels {
		data, err := json.Marshal(level)
		if err != nil {
			return fmt.Errorf("encode stock level %s: %w", id, err)
		}
		pipe.Set(ctx, c.key(id), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store stock levels: %w", err)
	}
	return nil
}

// Snapshot reads the requested items with a single MGET. Entries that fail
// to decode are dropped and treated as unknown.
func (c *RedisStockCache) Snapshot(ctx context.Context, itemIDs []uuid.UUID) (invoice.StockSnapshot, error) {
	out := make(invoice.StockSnapshot, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		keys[i] = c.key(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read stock levels: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var level invoice.StockLevel
		if err := json.Unmarshal([]byte(raw), &level); err != nil {
			c.logger.Warn("dropping undecodable stock level",
				zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		out[itemIDs[i]] = level
	}
	return out, nil
}

// Invalidate deletes the given item keys
func (c *RedisStockCache) Invalidate(ctx context.Context, itemIDs ...uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	keys := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate stock levels: %w", err)
	}
	return nil
}

// Close releases the client when the cache created it
func (c *RedisStockCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}
