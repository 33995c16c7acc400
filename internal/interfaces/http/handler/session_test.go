package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/interfaces/http/dto"
)

func stockedItem(id uuid.UUID, available, minStock int64) *invoice.Item {
	return &invoice.Item{
		ID:        id,
		Name:      "Widget",
		Code:      "W-1",
		Price:     decimal.NewFromInt(20),
		Available: decimal.NewFromInt(available),
		MinStock:  decimal.NewFromInt(minStock),
	}
}

func draftBody(itemID uuid.UUID, qty, price string, status invoice.Status, payment string) map[string]any {
	return map[string]any{
		"client_id": uuid.New().String(),
		"status":    status,
		"lines": []map[string]any{{
			"item_id":    itemID.String(),
			"item_name":  "Widget",
			"quantity":   qty,
			"unit_price": price,
		}},
		"discount":          "0",
		"initial_payment":   payment,
		"deduct_from_stock": true,
	}
}

func openSession(t *testing.T, api *testAPI) uuid.UUID {
	t.Helper()
	w, resp := api.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var sess SessionResponse
	decodeInto(t, resp.Data, &sess)
	require.NotEqual(t, uuid.Nil, sess.ID)
	return sess.ID
}

func TestSessionHandler_OpenNewAndGet(t *testing.T) {
	api := newTestAPI(t)
	sessionID := openSession(t, api)

	w, resp := api.do(t, http.MethodGet, "/api/v1/sessions/"+sessionID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	var sess SessionResponse
	decodeInto(t, resp.Data, &sess)
	assert.True(t, sess.IsNew)
	assert.Equal(t, invoice.StatusPending, sess.Draft.Status)
	assert.Nil(t, sess.BaselineStatus)
	assert.Equal(t, []invoice.Status{invoice.StatusPending, invoice.StatusDept, invoice.StatusPaid}, sess.Statuses)
}

func TestSessionHandler_Get_Errors(t *testing.T) {
	api := newTestAPI(t)

	t.Run("invalid session id", func(t *testing.T) {
		w, resp := api.do(t, http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidID, resp.Error.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		w, resp := api.do(t, http.MethodGet, "/api/v1/sessions/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "SESSION_NOT_FOUND", resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})
}

func TestSessionHandler_EvaluateAndSubmit(t *testing.T) {
	api := newTestAPI(t)
	itemID := uuid.New()
	api.store.On("FetchItem", mock.Anything, itemID).Return(stockedItem(itemID, 100, 5), nil)

	saved := &invoice.Invoice{Status: invoice.StatusPending, Total: decimal.NewFromInt(40), Remaining: decimal.NewFromInt(40)}
	saved.ID = uuid.New()
	api.store.On("PersistInvoice", mock.Anything, mock.MatchedBy(func(p invoice.InvoicePayload) bool {
		return p.InvoiceID == nil && len(p.Lines) == 1 && p.Lines[0].ItemID == itemID && p.DeductFromStock
	})).Return(saved, nil).Once()

	sessionID := openSession(t, api)
	body := draftBody(itemID, "2", "20", invoice.StatusPending, "0")

	w, resp := api.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/evaluate", map[string]any{"draft": body})
	require.Equal(t, http.StatusOK, w.Code)
	var eval EvaluationResponse
	decodeInto(t, resp.Data, &eval)
	assert.Equal(t, invoice.OutcomeApproved, eval.Outcome.Kind)
	assert.Equal(t, "40", eval.Outcome.Totals.TotalAfterDiscount.String())

	// Submit without a body saves the draft stored by evaluate
	w, resp = api.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var submit SubmitResponse
	decodeInto(t, resp.Data, &submit)
	assert.True(t, submit.Saved)
	require.NotNil(t, submit.Invoice)
	assert.Equal(t, saved.ID, submit.Invoice.ID)

	// A saved session is discarded
	w, _ = api.do(t, http.MethodGet, "/api/v1/sessions/"+sessionID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	api.store.AssertExpectations(t)
}

func TestSessionHandler_Submit_NeedsConfirmation(t *testing.T) {
	api := newTestAPI(t)
	itemID := uuid.New()
	api.store.On("FetchItem", mock.Anything, itemID).Return(stockedItem(itemID, 3, 1), nil)

	sessionID := openSession(t, api)
	body := draftBody(itemID, "3", "20", invoice.StatusPending, "0")

	w, resp := api.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/submit", map[string]any{"draft": body})

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeConfirmationRequired, resp.Error.Code)
	var outcome OutcomeResponse
	decodeInto(t, resp.Error.Details, &outcome)
	assert.Equal(t, invoice.OutcomeNeedsConfirmation, outcome.Kind)
	require.Len(t, outcome.Prompts, 1)
	assert.Equal(t, invoice.PromptStockWarning, outcome.Prompts[0].Kind)
	api.store.AssertNotCalled(t, "PersistInvoice", mock.Anything, mock.Anything)

	saved := &invoice.Invoice{Status: invoice.StatusPending, Total: decimal.NewFromInt(60)}
	saved.ID = uuid.New()
	api.store.On("PersistInvoice", mock.Anything, mock.Anything).Return(saved, nil).Once()

	w, resp = api.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/submit", map[string]any{
		"acknowledged": []string{outcome.Prompts[0].Key},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var submit SubmitResponse
	decodeInto(t, resp.Data, &submit)
	assert.True(t, submit.Saved)
	require.Len(t, submit.Outcome.Acknowledged, 1)
}

func TestSessionHandler_Submit_Blocked(t *testing.T) {
	api := newTestAPI(t)
	itemID := uuid.New()
	api.store.On("FetchItem", mock.Anything, itemID).Return(stockedItem(itemID, 100, 5), nil)
	sessionID := openSession(t, api)

	w, resp := api.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/submit", map[string]any{
		"draft": draftBody(itemID, "1", "5", invoice.StatusPending, "0"),
	})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, invoice.CodeBelowMinimumAmount, resp.Error.Code)
	var outcome OutcomeResponse
	decodeInto(t, resp.Error.Details, &outcome)
	assert.Equal(t, invoice.OutcomeBlocked, outcome.Kind)
	api.store.AssertNotCalled(t, "PersistInvoice", mock.Anything, mock.Anything)
}

func TestSessionHandler_Submit_Declined(t *testing.T) {
	api := newTestAPI(t)
	sessionID := openSession(t, api)

	w, resp := api.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/submit", map[string]any{"declined": true})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "CONFIRMATION_DECLINED", resp.Error.Code)
	api.store.AssertNotCalled(t, "PersistInvoice", mock.Anything, mock.Anything)
}

func TestSessionHandler_Submit_RemoteErrors(t *testing.T) {
	tests := []struct {
		name        string
		remote      *invoice.RemoteError
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "conflict shows the store description",
			remote:      invoice.NewRemoteError(http.StatusConflict, "STOCK_CONFLICT", "Only 1 Widget left"),
			wantStatus:  http.StatusConflict,
			wantCode:    "STOCK_CONFLICT",
			wantMessage: "Only 1 Widget left",
		},
		{
			name:        "transient without description shows the generic message",
			remote:      invoice.NewRemoteError(http.StatusServiceUnavailable, "", ""),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    dto.ErrCodeStoreTransient,
			wantMessage: invoice.GenericRemoteMessage,
		},
		{
			name:        "auth failure is a gateway error",
			remote:      invoice.NewRemoteError(http.StatusUnauthorized, "TOKEN_EXPIRED", ""),
			wantStatus:  http.StatusBadGateway,
			wantCode:    "TOKEN_EXPIRED",
			wantMessage: invoice.GenericRemoteMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			itemID := uuid.New()
			api.store.On("FetchItem", mock.Anything, itemID).Return(stockedItem(itemID, 100, 5), nil)
			api.store.On("PersistInvoice", mock.Anything, mock.Anything).Return(nil, tt.remote)

			sessionID := openSession(t, api)
			w, resp := api.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/submit", map[string]any{
				"draft": draftBody(itemID, "2", "20", invoice.StatusPending, "0"),
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)

			// The draft survives a failed save
			w, _ = api.do(t, http.MethodGet, "/api/v1/sessions/"+sessionID.String(), nil)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestSessionHandler_OpenExisting(t *testing.T) {
	itemID := uuid.New()
	existing := &invoice.Invoice{
		ClientID:      uuid.New(),
		Status:        invoice.StatusDept,
		Lines:         []invoice.Line{{ItemID: &itemID, ItemName: "Widget", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(10)}},
		Total:         decimal.NewFromInt(40),
		AmountSettled: decimal.NewFromInt(15),
		Remaining:     decimal.NewFromInt(25),
	}
	existing.ID = uuid.New()

	t.Run("captures the baseline", func(t *testing.T) {
		api := newTestAPI(t)
		api.store.On("FetchInvoice", mock.Anything, existing.ID).Return(existing, nil)

		w, resp := api.do(t, http.MethodPost, "/api/v1/invoices/"+existing.ID.String()+"/sessions", nil)

		require.Equal(t, http.StatusCreated, w.Code)
		var sess SessionResponse
		decodeInto(t, resp.Data, &sess)
		assert.False(t, sess.IsNew)
		require.NotNil(t, sess.BaselineStatus)
		assert.Equal(t, invoice.StatusDept, *sess.BaselineStatus)
		require.Len(t, sess.Baseline, 1)
		assert.Equal(t, "4", sess.Baseline[0].Quantity.String())
		assert.Equal(t, "15", sess.Draft.InitialPayment.String())
		assert.Equal(t, []invoice.Status{invoice.StatusDept, invoice.StatusPaid}, sess.Statuses)
		assert.False(t, sess.BaselineDeducted)
	})

	t.Run("deleted invoice cannot be edited", func(t *testing.T) {
		api := newTestAPI(t)
		deleted := *existing
		deleted.Status = invoice.StatusDeleted
		api.store.On("FetchInvoice", mock.Anything, existing.ID).Return(&deleted, nil)

		w, resp := api.do(t, http.MethodPost, "/api/v1/invoices/"+existing.ID.String()+"/sessions", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVOICE_NOT_EDITABLE", resp.Error.Code)
	})

	t.Run("missing invoice", func(t *testing.T) {
		api := newTestAPI(t)
		api.store.On("FetchInvoice", mock.Anything, existing.ID).
			Return(nil, invoice.NewRemoteError(http.StatusNotFound, "NOT_FOUND", "Invoice not found"))

		w, resp := api.do(t, http.MethodPost, "/api/v1/invoices/"+existing.ID.String()+"/sessions", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Invoice not found", resp.Error.Message)
	})
}

func TestSessionHandler_Evaluate_LineChecks(t *testing.T) {
	api := newTestAPI(t)
	itemID := uuid.New()
	api.store.On("FetchItem", mock.Anything, itemID).Return(stockedItem(itemID, 3, 1), nil)

	sessionID := openSession(t, api)
	body := draftBody(itemID, "3", "20", invoice.StatusPending, "0")
	body["lines"] = []map[string]any{
		{"item_id": itemID.String(), "item_name": "Widget", "quantity": "3", "unit_price": "20"},
		{"item_name": "Loose part", "quantity": "-1", "unit_price": "5"},
	}

	w, resp := api.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/evaluate", map[string]any{"draft": body})

	require.Equal(t, http.StatusOK, w.Code)
	var eval EvaluationResponse
	decodeInto(t, resp.Data, &eval)
	require.Len(t, eval.Lines, 2)

	assert.Equal(t, 0, eval.Lines[0].Index)
	assert.True(t, eval.Lines[0].Valid)
	assert.Equal(t, invoice.StockWillGoOutOfStock, eval.Lines[0].Condition)

	assert.Equal(t, 1, eval.Lines[1].Index)
	assert.False(t, eval.Lines[1].Valid)
	assert.Equal(t, invoice.CodeInvalidLine, eval.Lines[1].Code)
	assert.NotEmpty(t, eval.Lines[1].Message)
}

func TestSessionHandler_DeleteInvoice(t *testing.T) {
	itemID := uuid.New()
	existing := &invoice.Invoice{
		ClientID:        uuid.New(),
		Status:          invoice.StatusPending,
		Lines:           []invoice.Line{{ItemID: &itemID, ItemName: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(10)}},
		Total:           decimal.NewFromInt(20),
		Remaining:       decimal.NewFromInt(20),
		DeductFromStock: true,
	}
	existing.ID = uuid.New()

	t.Run("deletes the invoice", func(t *testing.T) {
		api := newTestAPI(t)
		api.store.On("FetchInvoice", mock.Anything, existing.ID).Return(existing, nil)
		api.store.On("DeleteInvoice", mock.Anything, existing.ID).Return(nil).Once()

		w, _ := api.do(t, http.MethodDelete, "/api/v1/invoices/"+existing.ID.String(), nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		api.store.AssertExpectations(t)
	})

	t.Run("already deleted", func(t *testing.T) {
		api := newTestAPI(t)
		deleted := *existing
		deleted.Status = invoice.StatusDeleted
		api.store.On("FetchInvoice", mock.Anything, existing.ID).Return(&deleted, nil)

		w, _ := api.do(t, http.MethodDelete, "/api/v1/invoices/"+existing.ID.String(), nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		api.store.AssertNotCalled(t, "DeleteInvoice", mock.Anything, mock.Anything)
	})

	t.Run("store refuses", func(t *testing.T) {
		api := newTestAPI(t)
		api.store.On("FetchInvoice", mock.Anything, existing.ID).Return(existing, nil)
		api.store.On("DeleteInvoice", mock.Anything, existing.ID).
			Return(invoice.NewRemoteError(http.StatusConflict, "INVOICE_HAS_SETTLEMENTS", "Invoice has settlements"))

		w, resp := api.do(t, http.MethodDelete, "/api/v1/invoices/"+existing.ID.String(), nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Invoice has settlements", resp.Error.Message)
	})

	t.Run("invalid id", func(t *testing.T) {
		api := newTestAPI(t)
		w, resp := api.do(t, http.MethodDelete, "/api/v1/invoices/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidID, resp.Error.Code)
	})
}

func TestSessionHandler_Discard(t *testing.T) {
	api := newTestAPI(t)
	sessionID := openSession(t, api)

	w, _ := api.do(t, http.MethodDelete, "/api/v1/sessions/"+sessionID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = api.do(t, http.MethodGet, "/api/v1/sessions/"+sessionID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_CalculateTotals(t *testing.T) {
	api := newTestAPI(t)
	itemID := uuid.New()

	w, resp := api.do(t, http.MethodPost, "/api/v1/calculations/totals", map[string]any{
		"lines": []map[string]any{
			{"item_id": itemID.String(), "quantity": "3", "unit_price": "10.005"},
			{"item_id": itemID.String(), "quantity": "1", "unit_price": "99", "is_free": true},
		},
		"discount":         "5",
		"free_items_value": "99",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var totals invoice.Totals
	decodeInto(t, resp.Data, &totals)
	assert.Equal(t, "30.02", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "25.02", totals.TotalAfterDiscount.StringFixed(2))
	require.NotNil(t, totals.FreeItemsValue)
	assert.Equal(t, "99", totals.FreeItemsValue.String())
}

func TestSessionHandler_Evaluate_InvalidBody(t *testing.T) {
	api := newTestAPI(t)
	sessionID := openSession(t, api)

	w, resp := api.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/evaluate", map[string]any{
		"draft": map[string]any{"lines": "nope"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
}
