package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/application/invoicing"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/cache"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/interfaces/http/dto"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

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

// testAPI is a gin engine wired with real services over a mocked store
type testAPI struct {
	engine *gin.Engine
	store  *MockStore
	cache  *cache.InMemoryStockCache
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := new(MockStore)
	stockCache := cache.NewInMemoryStockCache(time.Minute, zap.NewNop())
	sessions := invoicing.NewSessionStore(time.Hour)
	t.Cleanup(func() {
		_ = sessions.Close()
		_ = stockCache.Close()
	})

	policy := invoice.DefaultPolicy()
	oracle := invoicing.NewStockOracle(store, stockCache, nil, zap.NewNop())
	editor := invoicing.NewEditorService(store, oracle, sessions, invoice.NewSaveGuard(policy), nil, zap.NewNop())
	settlementSvc := invoicing.NewSettlementService(store, nil, zap.NewNop())
	adjustments := invoicing.NewStockAdjustmentService(store, oracle, policy, nil, zap.NewNop())

	sessionHandler := NewSessionHandler(editor)
	settlementHandler := NewSettlementHandler(settlementSvc)
	itemHandler := NewItemHandler(oracle, adjustments)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.POST("/sessions", sessionHandler.OpenNew)
	api.GET("/sessions/:session_id", sessionHandler.Get)
	api.POST("/sessions/:session_id/evaluate", sessionHandler.Evaluate)
	api.POST("/sessions/:session_id/submit", sessionHandler.Submit)
	api.DELETE("/sessions/:session_id", sessionHandler.Discard)
	api.POST("/invoices/:id/sessions", sessionHandler.OpenExisting)
	api.DELETE("/invoices/:id", sessionHandler.DeleteInvoice)
	api.GET("/invoices/:id/settlements", settlementHandler.List)
	api.POST("/calculations/totals", sessionHandler.CalculateTotals)
	api.GET("/items", itemHandler.Search)
	api.POST("/items/:id/adjustments/evaluate", itemHandler.EvaluateAdjustment)
	api.POST("/items/:id/adjustments", itemHandler.ApplyAdjustment)
	api.POST("/settlements/evaluate", settlementHandler.Evaluate)
	api.POST("/settlements", settlementHandler.Create)
	api.DELETE("/settlements/:id", settlementHandler.Delete)

	return &testAPI{engine: engine, store: store, cache: stockCache}
}

// do sends a request and decodes the standard envelope
func (a *testAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// decodeInto re-decodes a loosely typed envelope field into out
func decodeInto(t *testing.T, v any, out any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
