package invoicing

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

func debtInvoice(total, settled int64) *invoice.Invoice {
	inv := &invoice.Invoice{
		Status:        invoice.StatusDept,
		Total:         decimal.NewFromInt(total),
		AmountSettled: decimal.NewFromInt(settled),
		Remaining:     decimal.NewFromInt(total - settled),
	}
	inv.ID = uuid.New()
	return inv
}

func cashSettlement(invoiceID uuid.UUID, amount string) invoice.SettlementDraft {
	return invoice.SettlementDraft{
		InvoiceID: invoiceID,
		Amount:    decimal.RequireFromString(amount),
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Method:    invoice.PaymentMethodCash,
	}
}

func TestSettlementService_Evaluate(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		wantCode string
	}{
		{name: "exact settlement", amount: "60"},
		{name: "partial settlement", amount: "0.01"},
		{name: "one cent over", amount: "60.01", wantCode: invoice.CodeExceedsRemainingBalance},
		{name: "zero", amount: "0", wantCode: invoice.CodeNonPositiveAmount},
		{name: "negative", amount: "-5", wantCode: invoice.CodeNonPositiveAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			svc := NewSettlementService(store, nil, zap.NewNop())
			inv := debtInvoice(100, 40)
			store.On("FetchInvoice", mock.Anything, inv.ID).Return(inv, nil)

			eval, err := svc.Evaluate(context.Background(), cashSettlement(inv.ID, tt.amount))
			require.NoError(t, err)
			assert.True(t, eval.Balance.Remaining.Equal(decimal.NewFromInt(60)))
			if tt.wantCode == "" {
				assert.True(t, eval.Approved())
			} else {
				assert.Equal(t, tt.wantCode, invoice.CodeOf(eval.Reason))
			}
		})
	}
}

func TestSettlementService_Create(t *testing.T) {
	store := new(MockStore)
	svc := NewSettlementService(store, nil, zap.NewNop())
	inv := debtInvoice(100, 40)
	store.On("FetchInvoice", mock.Anything, inv.ID).Return(inv, nil)

	recorded := &invoice.Settlement{InvoiceID: inv.ID, Amount: decimal.NewFromInt(60)}
	recorded.ID = uuid.New()
	store.On("PersistSettlement", mock.Anything, mock.MatchedBy(func(p invoice.SettlementPayload) bool {
		return p.InvoiceID == inv.ID && p.Amount.Equal(decimal.NewFromInt(60))
	})).Return(recorded, nil).Once()

	settlement, err := svc.Create(context.Background(), cashSettlement(inv.ID, "60"))
	require.NoError(t, err)
	assert.Equal(t, recorded.ID, settlement.ID)
	store.AssertExpectations(t)
}

func TestSettlementService_Create_Blocked(t *testing.T) {
	t.Run("paid invoice", func(t *testing.T) {
		store := new(MockStore)
		svc := NewSettlementService(store, nil, zap.NewNop())
		inv := debtInvoice(100, 100)
		inv.Status = invoice.StatusPaid
		store.On("FetchInvoice", mock.Anything, inv.ID).Return(inv, nil)

		_, err := svc.Create(context.Background(), cashSettlement(inv.ID, "1"))

		var notSettleable *invoice.NotSettleableError
		require.True(t, errors.As(err, &notSettleable))
		store.AssertNotCalled(t, "PersistSettlement", mock.Anything, mock.Anything)
	})

	t.Run("card without last digits", func(t *testing.T) {
		store := new(MockStore)
		svc := NewSettlementService(store, nil, zap.NewNop())
		inv := debtInvoice(100, 0)
		store.On("FetchInvoice", mock.Anything, inv.ID).Return(inv, nil)

		draft := cashSettlement(inv.ID, "10")
		draft.Method = invoice.PaymentMethodCard
		draft.CardLast4 = "12a4"

		_, err := svc.Create(context.Background(), draft)
		assert.Equal(t, invoice.CodeIncompleteSettlement, invoice.CodeOf(err))
	})

	t.Run("missing invoice skips the fetch", func(t *testing.T) {
		store := new(MockStore)
		svc := NewSettlementService(store, nil, zap.NewNop())

		_, err := svc.Create(context.Background(), cashSettlement(uuid.Nil, "10"))
		assert.Equal(t, invoice.CodeIncompleteSettlement, invoice.CodeOf(err))
		store.AssertNotCalled(t, "FetchInvoice", mock.Anything, mock.Anything)
	})
}

func TestSettlementService_Create_RemoteConflict(t *testing.T) {
	store := new(MockStore)
	svc := NewSettlementService(store, nil, zap.NewNop())
	inv := debtInvoice(100, 40)
	store.On("FetchInvoice", mock.Anything, inv.ID).Return(inv, nil)
	store.On("PersistSettlement", mock.Anything, mock.Anything).
		Return(nil, invoice.NewRemoteError(http.StatusConflict, "BALANCE_CHANGED", ""))

	_, err := svc.Create(context.Background(), cashSettlement(inv.ID, "60"))

	var remote *invoice.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.True(t, remote.Retryable())
	assert.Equal(t, invoice.GenericRemoteMessage, remote.UserMessage())
}

func TestSettlementService_ListAndDelete(t *testing.T) {
	store := new(MockStore)
	svc := NewSettlementService(store, nil, zap.NewNop())
	invoiceID := uuid.New()
	settlementID := uuid.New()

	store.On("FetchSettlements", mock.Anything, invoiceID).Return([]invoice.Settlement{{InvoiceID: invoiceID}}, nil)
	store.On("DeleteSettlement", mock.Anything, settlementID).Return(nil)

	list, err := svc.List(context.Background(), invoiceID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(context.Background(), settlementID))
	store.AssertExpectations(t)
}
