package invoicing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

func TestStockOracle_SearchPopulatesCache(t *testing.T) {
	store := new(MockStore)
	cache := new(MockStockCache)
	oracle := NewStockOracle(store, cache, nil, zap.NewNop())

	a := invoice.Item{ID: uuid.New(), Name: "A", Available: decimal.NewFromInt(4), MinStock: decimal.NewFromInt(1)}
	b := invoice.Item{ID: uuid.New(), Name: "B", Available: decimal.NewFromInt(0)}
	query := invoice.ItemQuery{Search: "bolt", Page: 1, PageSize: 20}
	store.On("FetchItemsByQuery", mock.Anything, query).
		Return(&invoice.ItemPage{Items: []invoice.Item{a, b}, TotalElements: 2, TotalPages: 1}, nil)
	cache.On("Put", mock.Anything, mock.MatchedBy(func(levels invoice.StockSnapshot) bool {
		la, okA := levels.Lookup(a.ID)
		_, okB := levels.Lookup(b.ID)
		return len(levels) == 2 && okA && okB && la.Available.Equal(decimal.NewFromInt(4))
	})).Return(nil).Once()

	page, err := oracle.Search(context.Background(), query)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	cache.AssertExpectations(t)
}

func TestStockOracle_Snapshot(t *testing.T) {
	store := new(MockStore)
	cache := new(MockStockCache)
	oracle := NewStockOracle(store, cache, nil, zap.NewNop())

	cached, fetched, unknown := uuid.New(), uuid.New(), uuid.New()
	ids := []uuid.UUID{cached, fetched, unknown}

	cache.On("Snapshot", mock.Anything, ids).Return(invoice.StockSnapshot{
		cached: {Available: decimal.NewFromInt(3)},
	}, nil)
	cache.On("Put", mock.Anything, mock.Anything).Return(nil)
	store.On("FetchItem", mock.Anything, fetched).Return(&invoice.Item{ID: fetched, Available: decimal.NewFromInt(8)}, nil)
	store.On("FetchItem", mock.Anything, unknown).Return(nil, errors.New("timeout"))

	snapshot := oracle.Snapshot(context.Background(), ids)

	level, ok := snapshot.Lookup(cached)
	require.True(t, ok)
	assert.True(t, level.Available.Equal(decimal.NewFromInt(3)))
	level, ok = snapshot.Lookup(fetched)
	require.True(t, ok)
	assert.True(t, level.Available.Equal(decimal.NewFromInt(8)))
	_, ok = snapshot.Lookup(unknown)
	assert.False(t, ok)
}

func TestStockOracle_CacheFailureIsAdvisory(t *testing.T) {
	store := new(MockStore)
	cache := new(MockStockCache)
	oracle := NewStockOracle(store, cache, nil, zap.NewNop())

	id := uuid.New()
	cache.On("Snapshot", mock.Anything, []uuid.UUID{id}).Return(nil, errors.New("redis down"))
	cache.On("Put", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	store.On("FetchItem", mock.Anything, id).Return(&invoice.Item{ID: id, Available: decimal.NewFromInt(2)}, nil)

	snapshot := oracle.Snapshot(context.Background(), []uuid.UUID{id})
	_, ok := snapshot.Lookup(id)
	assert.True(t, ok)
}
