package invoicing

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// MockStore is a mock implementation of invoice.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) FetchItemsByQuery(ctx context.Context, query invoice.ItemQuery) (*invoice.ItemPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.ItemPage), args.Error(1)
}

func (m *MockStore) FetchItem(ctx context.Context, id uuid.UUID) (*invoice.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Item), args.Error(1)
}

func (m *MockStore) PersistStockAdjustment(ctx context.Context, payload invoice.StockAdjustmentPayload) (*invoice.Item, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Item), args.Error(1)
}

func (m *MockStore) FetchInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockStore) PersistInvoice(ctx context.Context, payload invoice.InvoicePayload) (*invoice.Invoice, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockStore) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) FetchSettlements(ctx context.Context, invoiceID uuid.UUID) ([]invoice.Settlement, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoice.Settlement), args.Error(1)
}

func (m *MockStore) PersistSettlement(ctx context.Context, payload invoice.SettlementPayload) (*invoice.Settlement, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Settlement), args.Error(1)
}

func (m *MockStore) DeleteSettlement(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStockCache is a mock implementation of StockCache
type MockStockCache struct {
	mock.Mock
}

func (m *MockStockCache) Put(ctx context.Context, levels invoice.StockSnapshot) error {
	args := m.Called(ctx, levels)
	return args.Error(0)
}

func (m *MockStockCache) Snapshot(ctx context.Context, itemIDs []uuid.UUID) (invoice.StockSnapshot, error) {
	args := m.Called(ctx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(invoice.StockSnapshot), args.Error(1)
}

func (m *MockStockCache) Invalidate(ctx context.Context, itemIDs ...uuid.UUID) error {
	args := m.Called(ctx, itemIDs)
	return args.Error(0)
}
