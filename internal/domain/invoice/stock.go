package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel is the best-known stock of an item. It is advisory: the store
// re-validates on persist.
type StockLevel struct {
	Available decimal.Decimal `json:"available"`
	MinStock  decimal.Decimal `json:"min_stock"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// StockSnapshot maps item ids to their best-known stock level
type StockSnapshot map[uuid.UUID]StockLevel

// Lookup returns the level for an item; ok is false when the item is unknown
func (s StockSnapshot) Lookup(itemID uuid.UUID) (StockLevel, bool) {
	if s == nil {
		return StockLevel{}, false
	}
	level, ok := s[itemID]
	return level, ok
}

// Merge returns a snapshot holding the entries of s overwritten by other
func (s StockSnapshot) Merge(other StockSnapshot) StockSnapshot {
	out := make(StockSnapshot, len(s)+len(other))
	for id, l := range s {
		out[id] = l
	}
	for id, l := range other {
		out[id] = l
	}
	return out
}

// StockCondition classifies a requested quantity against a stock level
type StockCondition string

const (
	StockSufficient       StockCondition = "SUFFICIENT"
	StockWillGoLow        StockCondition = "WILL_GO_LOW"
	StockWillGoOutOfStock StockCondition = "WILL_GO_OUT_OF_STOCK"
	StockInsufficient     StockCondition = "INSUFFICIENT"
	StockUnverifiable     StockCondition = "UNVERIFIABLE"
)

// IsBlocking reports whether the condition refuses the save
func (c StockCondition) IsBlocking() bool {
	return c == StockInsufficient
}

// IsWarning reports whether the condition needs a confirmation
func (c StockCondition) IsWarning() bool {
	return c == StockWillGoLow || c == StockWillGoOutOfStock || c == StockUnverifiable
}

// ClassifyStock compares a requested quantity with a stock level. known is
// false when the snapshot had no entry for the item.
func ClassifyStock(requested decimal.Decimal, level StockLevel, known bool) StockCondition {
	if !known {
		return StockUnverifiable
	}
	if requested.GreaterThan(level.Available) {
		return StockInsufficient
	}
	left := level.Available.Sub(requested)
	switch {
	case left.IsZero():
		return StockWillGoOutOfStock
	case left.LessThanOrEqual(level.MinStock):
		return StockWillGoLow
	default:
		return StockSufficient
	}
}

// StockFinding is the stock classification of one item of a draft
type StockFinding struct {
	ItemID    uuid.UUID        `json:"item_id"`
	ItemLabel string           `json:"item_label"`
	Requested decimal.Decimal  `json:"requested"`
	Available *decimal.Decimal `json:"available,omitempty"`
	MinStock  *decimal.Decimal `json:"min_stock,omitempty"`
	Condition StockCondition   `json:"condition"`
}

// Remaining is the stock left after the sale, when known
func (f StockFinding) Remaining() *decimal.Decimal {
	if f.Available == nil {
		return nil
	}
	r := f.Available.Sub(f.Requested)
	return &r
}
