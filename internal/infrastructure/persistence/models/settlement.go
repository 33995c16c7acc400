package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// SettlementModel is a payment recorded against an invoice
type SettlementModel struct {
	BaseModel
	InvoiceID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Date        time.Time             `gorm:"not null"`
	Method      invoice.PaymentMethod `gorm:"type:varchar(32);not null"`
	Reference   string                `gorm:"type:varchar(100)"`
	CardLast4   string                `gorm:"column:card_last4;type:varchar(4)"`
	CheckNumber string                `gorm:"type:varchar(64)"`
	BankName    string                `gorm:"type:varchar(100)"`
	Notes       string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SettlementModel) TableName() string {
	return "settlements"
}

// ToDomain converts the model to a domain Settlement
func (m *SettlementModel) ToDomain() invoice.Settlement {
	return invoice.Settlement{
		BaseEntity:  m.BaseModel.ToDomain(),
		InvoiceID:   m.InvoiceID,
		Amount:      m.Amount,
		Date:        m.Date,
		Method:      m.Method,
		Reference:   m.Reference,
		CardLast4:   m.CardLast4,
		CheckNumber: m.CheckNumber,
		BankName:    m.BankName,
		Notes:       m.Notes,
	}
}

// SettlementModelFromPayload builds a new settlement row
func SettlementModelFromPayload(id uuid.UUID, p invoice.SettlementPayload, now time.Time) *SettlementModel {
	date := p.Date
	if date.IsZero() {
		date = now
	}
	return &SettlementModel{
		BaseModel:   BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		Date:        date,
		Method:      p.Method,
		Reference:   p.Reference,
		CardLast4:   p.CardLast4,
		CheckNumber: p.CheckNumber,
		BankName:    p.BankName,
		Notes:       p.Notes,
	}
}
