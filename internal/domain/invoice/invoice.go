package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/shared"
)

// Invoice is the store's view of a persisted invoice
type Invoice struct {
	shared.BaseEntity
	ClientID        uuid.UUID
	ClientName      string
	Status          Status
	Lines           []Line
	Discount        decimal.Decimal
	VATPercent      decimal.Decimal
	PaymentMethod   PaymentMethod
	Total           decimal.Decimal
	AmountSettled   decimal.Decimal
	Remaining       decimal.Decimal
	FreeItemsValue  *decimal.Decimal
	DeductFromStock bool
	IssuedAt        time.Time
}

// Totals recomputes the invoice totals from its lines
func (inv *Invoice) Totals() Totals {
	return CalculateTotals(inv.Lines, inv.Discount, inv.FreeItemsValue)
}

// Balance returns the settlement view of the invoice
func (inv *Invoice) Balance() InvoiceBalance {
	return InvoiceBalance{
		InvoiceID:     inv.ID,
		Status:        inv.Status,
		Total:         inv.Total,
		AmountSettled: inv.AmountSettled,
		Remaining:     inv.Remaining,
	}
}

// CheckBalance verifies remaining = total - settled, remaining >= 0 and a
// PAID invoice has nothing left to settle
func (inv *Invoice) CheckBalance() error {
	if inv.Remaining.IsNegative() {
		return shared.NewDomainError("BALANCE_MISMATCH", "remaining balance cannot be negative")
	}
	if !inv.Total.Sub(inv.AmountSettled).Equal(inv.Remaining) {
		return shared.NewDomainError("BALANCE_MISMATCH", "remaining balance does not match total minus settled amount")
	}
	if inv.Status == StatusPaid && !inv.Remaining.IsZero() {
		return shared.NewDomainError("BALANCE_MISMATCH", "paid invoice has an outstanding balance")
	}
	return nil
}

// Draft is the in-progress invoice being edited. It becomes an InvoicePayload
// once the save guard approves it.
type Draft struct {
	InvoiceID       *uuid.UUID       `json:"invoice_id,omitempty"`
	ClientID        *uuid.UUID       `json:"client_id,omitempty"`
	Status          Status           `json:"status"`
	Lines           []Line           `json:"lines"`
	Discount        decimal.Decimal  `json:"discount"`
	VATPercent      decimal.Decimal  `json:"vat_percent"`
	PaymentMethod   PaymentMethod    `json:"payment_method,omitempty"`
	InitialPayment  decimal.Decimal  `json:"initial_payment"`
	DeductFromStock bool             `json:"deduct_from_stock"`
	FreeItemsValue  *decimal.Decimal `json:"free_items_value,omitempty"`
}

// DraftFromInvoice seeds an editing draft with a persisted invoice
func DraftFromInvoice(inv *Invoice) *Draft {
	id := inv.ID
	client := inv.ClientID
	lines := make([]Line, len(inv.Lines))
	copy(lines, inv.Lines)
	return &Draft{
		InvoiceID:       &id,
		ClientID:        &client,
		Status:          inv.Status,
		Lines:           lines,
		Discount:        inv.Discount,
		VATPercent:      inv.VATPercent,
		PaymentMethod:   inv.PaymentMethod,
		InitialPayment:  inv.AmountSettled,
		DeductFromStock: inv.DeductFromStock,
		FreeItemsValue:  inv.FreeItemsValue,
	}
}

// Totals recomputes the draft totals
func (d *Draft) Totals() Totals {
	return CalculateTotals(d.Lines, d.Discount, d.FreeItemsValue)
}

// Payload converts an approved draft into the persist request
func (d *Draft) Payload() InvoicePayload {
	lines := make([]LinePayload, 0, len(d.Lines))
	for _, l := range d.Lines {
		if !l.HasItem() {
			continue
		}
		lines = append(lines, LinePayload{
			ItemID:    *l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Free:      l.Free,
		})
	}
	p := InvoicePayload{
		Lines:           lines,
		Discount:        d.Discount,
		VATPercent:      d.VATPercent,
		InitialPayment:  d.InitialPayment,
		Status:          d.Status,
		PaymentMethod:   d.PaymentMethod,
		DeductFromStock: d.DeductFromStock,
	}
	if d.InvoiceID != nil {
		id := *d.InvoiceID
		p.InvoiceID = &id
	}
	if d.ClientID != nil {
		p.ClientID = *d.ClientID
	}
	return p
}
