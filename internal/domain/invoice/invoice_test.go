package invoice

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoice_CheckBalance(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name      string
		status    Status
		total     string
		settled   string
		remaining string
		wantErr   bool
	}{
		{"consistent pending", StatusPending, "100", "0", "100", false},
		{"consistent dept", StatusDept, "100", "40", "60", false},
		{"consistent paid", StatusPaid, "100", "100", "0", false},
		{"mismatch", StatusDept, "100", "40", "50", true},
		{"negative remaining", StatusDept, "100", "120", "-20", true},
		{"paid with balance", StatusPaid, "100", "90", "10", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{Status: tt.status, Total: d(tt.total), AmountSettled: d(tt.settled), Remaining: d(tt.remaining)}
			if tt.wantErr {
				assert.Error(t, inv.CheckBalance())
			} else {
				assert.NoError(t, inv.CheckBalance())
			}
		})
	}
}

func TestDraftFromInvoice(t *testing.T) {
	a := uuid.New()
	inv := &Invoice{
		ClientID:      uuid.New(),
		Status:        StatusDept,
		Lines:         []Line{newLine(a, "A", "2", "10")},
		AmountSettled: decimal.NewFromInt(5),
	}
	inv.ID = uuid.New()

	draft := DraftFromInvoice(inv)
	require.NotNil(t, draft.InvoiceID)
	assert.Equal(t, inv.ID, *draft.InvoiceID)
	assert.Equal(t, inv.ClientID, *draft.ClientID)
	assert.True(t, draft.InitialPayment.Equal(decimal.NewFromInt(5)))

	draft.Lines[0].Quantity = decimal.NewFromInt(1)
	assert.True(t, inv.Lines[0].Quantity.Equal(decimal.NewFromInt(2)), "draft lines are a copy")

	p := draft.Payload()
	require.NotNil(t, p.InvoiceID)
	assert.Equal(t, inv.ID, *p.InvoiceID)
	assert.False(t, p.DeductFromStock)

	inv.DeductFromStock = true
	draft = DraftFromInvoice(inv)
	assert.True(t, draft.DeductFromStock)
	assert.True(t, draft.Payload().DeductFromStock, "resubmitting keeps the stock deducted")
}

func TestLine_Label(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "Name", Line{ItemName: "Name", ItemCode: "C1"}.Label())
	assert.Equal(t, "C1", Line{ItemCode: "C1"}.Label())
	assert.Equal(t, id.String(), Line{ItemID: &id}.Label())
	assert.Equal(t, "unnamed item", Line{}.Label())
	assert.False(t, Line{}.HasItem())
	nilID := uuid.Nil
	assert.False(t, Line{ItemID: &nilID}.HasItem())
}
