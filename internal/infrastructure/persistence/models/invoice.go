package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// InvoiceModel is the persistence model of an invoice. Total, AmountSettled
// and Remaining are owned by the store and recomputed on every write.
type InvoiceModel struct {
	BaseModel
	Version       int                   `gorm:"not null;default:1"`
	ClientID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	ClientName    string                `gorm:"type:varchar(200)"`
	Status        invoice.Status        `gorm:"type:varchar(16);not null;index"`
	Discount      decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	VATPercent    decimal.Decimal       `gorm:"column:vat_percent;type:decimal(9,4);not null;default:0"`
	PaymentMethod invoice.PaymentMethod `gorm:"type:varchar(32)"`
	Total         decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	AmountSettled decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Remaining     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	DeductedStock bool                  `gorm:"not null;default:false"`
	IssuedAt      time.Time             `gorm:"not null"`
	Lines         []InvoiceLineModel    `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the model, with its loaded lines, to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	lines := make([]invoice.Line, len(m.Lines))
	for i := range m.Lines {
		lines[i] = m.Lines[i].ToDomain()
	}
	return &invoice.Invoice{
		BaseEntity:      m.BaseModel.ToDomain(),
		ClientID:        m.ClientID,
		ClientName:      m.ClientName,
		Status:          m.Status,
		Lines:           lines,
		Discount:        m.Discount,
		VATPercent:      m.VATPercent,
		PaymentMethod:   m.PaymentMethod,
		Total:           m.Total,
		AmountSettled:   m.AmountSettled,
		Remaining:       m.Remaining,
		DeductFromStock: m.DeductedStock,
		IssuedAt:        m.IssuedAt,
	}
}

// StockUsage returns the quantity each item consumed from stock, or nil
// when the invoice did not deduct stock
func (m *InvoiceModel) StockUsage() map[uuid.UUID]decimal.Decimal {
	if !m.DeductedStock {
		return nil
	}
	usage := make(map[uuid.UUID]decimal.Decimal)
	for _, l := range m.Lines {
		if l.ItemID != nil {
			usage[*l.ItemID] = usage[*l.ItemID].Add(l.Quantity)
		}
	}
	return usage
}

// InvoiceLineModel is one line of an invoice. Name and code are copied from
// the item when the line is written.
type InvoiceLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	ItemID    *uuid.UUID      `gorm:"type:uuid;index"`
	ItemName  string          `gorm:"type:varchar(200)"`
	ItemCode  string          `gorm:"type:varchar(64)"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Free      bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the model to a domain Line
func (m *InvoiceLineModel) ToDomain() invoice.Line {
	return invoice.Line{
		ItemID:    m.ItemID,
		ItemName:  m.ItemName,
		ItemCode:  m.ItemCode,
		UnitPrice: m.UnitPrice,
		Quantity:  m.Quantity,
		Free:      m.Free,
	}
}
