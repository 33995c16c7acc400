package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/telemetry"
)

// StockOracle serves the advisory stock snapshot. It writes the cache only
// from store responses and treats any cache failure as "unknown".
type StockOracle struct {
	items   invoice.ItemStore
	cache   StockCache
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewStockOracle creates a stock oracle over the item store and cache
func NewStockOracle(items invoice.ItemStore, cache StockCache, metrics Metrics, logger *zap.Logger) *StockOracle {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockOracle{
		items:   items,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Search queries items and records the stock levels of every returned item
func (o *StockOracle) Search(ctx context.Context, query invoice.ItemQuery) (*invoice.ItemPage, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "search")
	defer span.End()

	page, err := o.items.FetchItemsByQuery(ctx, query)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, remoteFailure(ctx, o.metrics, o.logger, opFetchItems, err)
	}

	fetchedAt := o.now()
	levels := make(invoice.StockSnapshot, len(page.Items))
	for _, item := range page.Items {
		levels[item.ID] = item.StockLevel(fetchedAt)
	}
	o.remember(ctx, levels)

	telemetry.SetAttributes(span, "result_count", len(page.Items))
	return page, nil
}

// Item fetches one item and records its stock level
func (o *StockOracle) Item(ctx context.Context, id uuid.UUID) (*invoice.Item, error) {
	item, err := o.items.FetchItem(ctx, id)
	if err != nil {
		return nil, remoteFailure(ctx, o.metrics, o.logger, opFetchItem, err)
	}
	o.remember(ctx, invoice.StockSnapshot{item.ID: item.StockLevel(o.now())})
	return item, nil
}

// Snapshot returns the best known stock levels for itemIDs. Items missing
// from the cache are looked up once; an item that still cannot be resolved
// stays absent and evaluates as unverifiable.
func (o *StockOracle) Snapshot(ctx context.Context, itemIDs []uuid.UUID) invoice.StockSnapshot {
	if len(itemIDs) == 0 {
		return invoice.StockSnapshot{}
	}

	snapshot, err := o.cache.Snapshot(ctx, itemIDs)
	if err != nil {
		o.logger.Warn("Stock cache read failed, treating stock as unknown", zap.Error(err))
		snapshot = invoice.StockSnapshot{}
	}

	for _, id := range itemIDs {
		if _, ok := snapshot.Lookup(id); ok {
			continue
		}
		item, err := o.Item(ctx, id)
		if err != nil {
			o.logger.Debug("Stock lookup failed", zap.String("item_id", id.String()), zap.Error(err))
			continue
		}
		snapshot = snapshot.Merge(invoice.StockSnapshot{item.ID: item.StockLevel(o.now())})
	}
	return snapshot
}

// Forget drops cached levels after a save changed them in the store
func (o *StockOracle) Forget(ctx context.Context, itemIDs ...uuid.UUID) {
	if len(itemIDs) == 0 {
		return
	}
	if err := o.cache.Invalidate(ctx, itemIDs...); err != nil {
		o.logger.Warn("Stock cache invalidation failed", zap.Error(err))
	}
}

func (o *StockOracle) remember(ctx context.Context, levels invoice.StockSnapshot) {
	if len(levels) == 0 {
		return
	}
	if err := o.cache.Put(ctx, levels); err != nil {
		o.logger.Warn("Stock cache write failed", zap.Error(err))
	}
}
