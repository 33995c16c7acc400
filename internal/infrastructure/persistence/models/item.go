package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// ItemModel is a catalog item with its authoritative stock level
type ItemModel struct {
	BaseModel
	Name      string          `gorm:"type:varchar(200);not null;index"`
	Code      string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Available decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the model to a domain Item
func (m *ItemModel) ToDomain() *invoice.Item {
	return &invoice.Item{
		ID:        m.ID,
		Name:      m.Name,
		Code:      m.Code,
		Price:     m.Price,
		Available: m.Available,
		MinStock:  m.MinStock,
	}
}

// Label names the item in user facing messages
func (m *ItemModel) Label() string {
	if m.Code != "" {
		return m.Name + " (" + m.Code + ")"
	}
	return m.Name
}

// StockAdjustmentModel records a manual stock correction
type StockAdjustmentModel struct {
	BaseModel
	ItemID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Previous decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	New      decimal.Decimal `gorm:"column:new_quantity;type:decimal(18,4);not null"`
	Reason   string          `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (StockAdjustmentModel) TableName() string {
	return "stock_adjustments"
}
