// Package models holds the gorm models of the self-hosted invoice store.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/shared"
)

// BaseModel provides the common persistence fields. It maps to the
// domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// All lists every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&ItemModel{},
		&StockAdjustmentModel{},
		&InvoiceModel{},
		&InvoiceLineModel{},
		&SettlementModel{},
	}
}
