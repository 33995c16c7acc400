// Package cache holds the advisory stock snapshot caches.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

const (
	// DefaultStockTTL bounds how long a stock level is trusted
	DefaultStockTTL        = 5 * time.Minute
	defaultCleanupInterval = 30 * time.Second
)

type stockEntry struct {
	level     invoice.StockLevel
	expiresAt time.Time
}

// InMemoryStockCache keeps stock levels in process memory. Suitable for a
// single instance; levels are not shared across replicas.
type InMemoryStockCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]stockEntry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger

	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewInMemoryStockCache creates the cache and starts its cleanup loop.
// Call Close to stop it.
func NewInMemoryStockCache(ttl time.Duration, logger *zap.Logger) *InMemoryStockCache {
	if ttl <= 0 {
		ttl = DefaultStockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &InMemoryStockCache{
		entries: make(map[uuid.UUID]stockEntry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	c.wg.Add(1)
	go c.cleanupLoop()
	return c
}

// Put stores or refreshes the given levels
func (c *InMemoryStockCache) Put(_ context.Context, levels invoice.StockSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	expiresAt := c.now().Add(c.ttl)
	for id, level := range levels {
		c.entries[id] = stockEntry{level: level, expiresAt: expiresAt}
	}
	return nil
}

// Snapshot returns the unexpired levels of the requested items. Items that
// are unknown or expired are simply absent.
func (c *InMemoryStockCache) Snapshot(_ context.Context, itemIDs []uuid.UUID) (invoice.StockSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	out := make(invoice.StockSnapshot, len(itemIDs))
	for _, id := range itemIDs {
		if e, ok := c.entries[id]; ok && now.Before(e.expiresAt) {
			out[id] = e.level
		}
	}
	return out, nil
}

// Invalidate drops the given items
func (c *InMemoryStockCache) Invalidate(_ context.Context, itemIDs ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range itemIDs {
		delete(c.entries, id)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryStockCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup loop
func (c *InMemoryStockCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCh)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryStockCache) cleanupLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *InMemoryStockCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	evicted := 0
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		c.logger.Debug("evicted expired stock levels", zap.Int("count", evicted))
	}
}
