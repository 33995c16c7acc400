package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/application/invoicing"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/config"
)

// StockCache is a closable invoicing.StockCache
type StockCache interface {
	invoicing.StockCache
	io.Closer
}

// NewStockCache builds the stock cache selected by cfg. A redis backend
// that cannot be reached falls back to memory when AllowFallback is set.
func NewStockCache(ctx context.Context, cfg config.StockCacheConfig, redisCfg config.RedisConfig, logger *zap.Logger) (StockCache, error) {
	if cfg.Backend != config.CacheBackendRedis {
		logger.Info("using in-memory stock cache", zap.Duration("ttl", cfg.TTL))
		return NewInMemoryStockCache(cfg.TTL, logger), nil
	}

	c, err := NewRedisStockCache(ctx, &redis.Options{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	}, cfg.KeyPrefix, cfg.TTL, logger)
	if err == nil {
		logger.Info("using Redis stock cache", zap.String("addr", redisCfg.Addr()))
		return c, nil
	}

	if !cfg.AllowFallback {
		return nil, fmt.Errorf("Redis required for stock cache but unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, falling back to in-memory stock cache. "+
		"Stock levels will not be shared across instances.",
		zap.Error(err),
	)
	return NewInMemoryStockCache(cfg.TTL, logger), nil
}

var (
	_ StockCache = (*InMemoryStockCache)(nil)
	_ StockCache = (*RedisStockCache)(nil)
)
