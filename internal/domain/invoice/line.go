package invoice

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one item row of an invoice draft
type Line struct {
	ItemID    *uuid.UUID      `json:"item_id,omitempty"`
	ItemName  string          `json:"item_name,omitempty"`
	ItemCode  string          `json:"item_code,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Free      bool            `json:"is_free"`
}

// HasItem reports whether an item has been picked for the line
func (l Line) HasItem() bool {
	return l.ItemID != nil && *l.ItemID != uuid.Nil
}

// Label is the name shown to the user for this line
func (l Line) Label() string {
	switch {
	case l.ItemName != "":
		return l.ItemName
	case l.ItemCode != "":
		return l.ItemCode
	case l.HasItem():
		return l.ItemID.String()
	default:
		return "unnamed item"
	}
}

// Amount is price times quantity, or zero for a free line
func (l Line) Amount() decimal.Decimal {
	if l.Free {
		return decimal.Zero
	}
	return l.UnitPrice.Mul(l.Quantity)
}

// Validate checks the numeric fields of the line
func (l Line) Validate(index int) error {
	if l.Quantity.IsNegative() {
		return &InvalidLineError{Index: index, Label: l.Label(), Reason: "quantity cannot be negative"}
	}
	if l.UnitPrice.IsNegative() {
		return &InvalidLineError{Index: index, Label: l.Label(), Reason: "unit price cannot be negative"}
	}
	return nil
}
