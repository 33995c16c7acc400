package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/shared"
)

// PaymentMethod is how an invoice or settlement is paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodCheck, PaymentMethodBankTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Settlement is an accepted payment against an invoice. It is immutable
// once stored and can only be deleted.
type Settlement struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID
	Amount      decimal.Decimal
	Date        time.Time
	Method      PaymentMethod
	Reference   string
	CardLast4   string
	CheckNumber string
	BankName    string
	Notes       string
}

// SettlementDraft is a proposed settlement awaiting the settlement guard
type SettlementDraft struct {
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Method      PaymentMethod   `json:"payment_method"`
	Reference   string          `json:"reference,omitempty"`
	CardLast4   string          `json:"card_last4,omitempty"`
	CheckNumber string          `json:"check_number,omitempty"`
	BankName    string          `json:"bank_name,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// Payload converts an approved draft into the persist request
func (d SettlementDraft) Payload() SettlementPayload {
	return SettlementPayload{
		InvoiceID:   d.InvoiceID,
		Amount:      d.Amount,
		Date:        d.Date,
		Method:      d.Method,
		Reference:   d.Reference,
		CardLast4:   d.CardLast4,
		CheckNumber: d.CheckNumber,
		BankName:    d.BankName,
		Notes:       d.Notes,
	}
}

// InvoiceBalance is the settlement-relevant view of an invoice as last fetched
type InvoiceBalance struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Status        Status          `json:"status"`
	Total         decimal.Decimal `json:"total"`
	AmountSettled decimal.Decimal `json:"amount_settled"`
	Remaining     decimal.Decimal `json:"remaining"`
}
