package remote

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/shared"
)

type itemPageWire struct {
	Items         []invoice.Item `json:"items"`
	TotalElements int64          `json:"total_elements"`
	TotalPages    int            `json:"total_pages"`
}

type lineWire struct {
	ItemID    *uuid.UUID      `json:"item_id,omitempty"`
	ItemName  string          `json:"item_name,omitempty"`
	ItemCode  string          `json:"item_code,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Free      bool            `json:"is_free"`
}

type invoiceWire struct {
	ID              uuid.UUID             `json:"id"`
	ClientID        uuid.UUID             `json:"client_id"`
	ClientName      string                `json:"client_name"`
	Status          invoice.Status        `json:"status"`
	Lines           []lineWire            `json:"lines"`
	Discount        decimal.Decimal       `json:"discount"`
	VATPercent      decimal.Decimal       `json:"vat_percent"`
	PaymentMethod   invoice.PaymentMethod `json:"payment_method"`
	Total           decimal.Decimal       `json:"total"`
	AmountSettled   decimal.Decimal       `json:"amount_settled"`
	Remaining       decimal.Decimal       `json:"remaining"`
	FreeItemsValue  *decimal.Decimal      `json:"free_items_value,omitempty"`
	DeductFromStock bool                  `json:"deduct_from_stock"`
	IssuedAt        time.Time             `json:"issued_at"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func (w invoiceWire) toDomain() *invoice.Invoice {
	lines := make([]invoice.Line, len(w.Lines))
	for i, l := range w.Lines {
		lines[i] = invoice.Line{
			ItemID:    l.ItemID,
			ItemName:  l.ItemName,
			ItemCode:  l.ItemCode,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Free:      l.Free,
		}
	}
	return &invoice.Invoice{
		BaseEntity:      shared.BaseEntity{ID: w.ID, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt},
		ClientID:        w.ClientID,
		ClientName:      w.ClientName,
		Status:          w.Status,
		Lines:           lines,
		Discount:        w.Discount,
		VATPercent:      w.VATPercent,
		PaymentMethod:   w.PaymentMethod,
		Total:           w.Total,
		AmountSettled:   w.AmountSettled,
		Remaining:       w.Remaining,
		FreeItemsValue:  w.FreeItemsValue,
		DeductFromStock: w.DeductFromStock,
		IssuedAt:        w.IssuedAt,
	}
}

type settlementWire struct {
	ID          uuid.UUID             `json:"id"`
	InvoiceID   uuid.UUID             `json:"invoice_id"`
	Amount      decimal.Decimal       `json:"amount"`
	Date        time.Time             `json:"date"`
	Method      invoice.PaymentMethod `json:"payment_method"`
	Reference   string                `json:"reference,omitempty"`
	CardLast4   string                `json:"card_last4,omitempty"`
	CheckNumber string                `json:"check_number,omitempty"`
	BankName    string                `json:"bank_name,omitempty"`
	Notes       string                `json:"notes,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func (w settlementWire) toDomain() invoice.Settlement {
	return invoice.Settlement{
		BaseEntity:  shared.BaseEntity{ID: w.ID, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt},
		InvoiceID:   w.InvoiceID,
		Amount:      w.Amount,
		Date:        w.Date,
		Method:      w.Method,
		Reference:   w.Reference,
		CardLast4:   w.CardLast4,
		CheckNumber: w.CheckNumber,
		BankName:    w.BankName,
		Notes:       w.Notes,
	}
}
