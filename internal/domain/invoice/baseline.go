package invoice

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BaselineLine is the per-item state of an invoice as it was loaded
type BaselineLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Label     string          `json:"label"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Baseline is the immutable snapshot of an existing invoice taken when an
// edit starts. It is absent for new invoices.
type Baseline struct {
	invoiceID  uuid.UUID
	status     Status
	deducted   bool
	lines      map[uuid.UUID]BaselineLine
	order      []uuid.UUID
	capturedAt time.Time
}

// CaptureBaseline snapshots a loaded invoice. Quantities of repeated items
// are summed; the price comes from the first chargeable line of the item.
func CaptureBaseline(inv *Invoice) *Baseline {
	b := &Baseline{
		invoiceID:  inv.ID,
		status:     inv.Status,
		deducted:   inv.DeductFromStock,
		lines:      make(map[uuid.UUID]BaselineLine, len(inv.Lines)),
		capturedAt: time.Now(),
	}
	priced := make(map[uuid.UUID]bool, len(inv.Lines))
	for _, l := range inv.Lines {
		if !l.HasItem() {
			continue
		}
		id := *l.ItemID
		bl, seen := b.lines[id]
		if !seen {
			bl = BaselineLine{ItemID: id, Label: l.Label(), Quantity: decimal.Zero}
			b.order = append(b.order, id)
		}
		bl.Quantity = bl.Quantity.Add(l.Quantity)
		if !seen || (!priced[id] && !l.Free) {
			bl.UnitPrice = l.UnitPrice
		}
		if !l.Free {
			priced[id] = true
		}
		b.lines[id] = bl
	}
	return b
}

// RestoreBaseline rebuilds a baseline from its serialized parts. deducted
// records whether the invoice had taken its quantities out of stock.
func RestoreBaseline(invoiceID uuid.UUID, status Status, deducted bool, lines []BaselineLine) *Baseline {
	b := &Baseline{
		invoiceID:  invoiceID,
		status:     status,
		deducted:   deducted,
		lines:      make(map[uuid.UUID]BaselineLine, len(lines)),
		capturedAt: time.Now(),
	}
	for _, l := range lines {
		if existing, ok := b.lines[l.ItemID]; ok {
			existing.Quantity = existing.Quantity.Add(l.Quantity)
			b.lines[l.ItemID] = existing
			continue
		}
		b.lines[l.ItemID] = l
		b.order = append(b.order, l.ItemID)
	}
	return b
}

// InvoiceID returns the id of the invoice the baseline was taken from
func (b *Baseline) InvoiceID() uuid.UUID {
	return b.invoiceID
}

// Status returns the invoice status at load time
func (b *Baseline) Status() Status {
	return b.status
}

// Deducted reports whether the loaded invoice had deducted its quantities
// from stock. It is false on a nil baseline.
func (b *Baseline) Deducted() bool {
	return b != nil && b.deducted
}

// CapturedAt returns when the baseline was taken
func (b *Baseline) CapturedAt() time.Time {
	return b.capturedAt
}

// Lookup returns the baseline entry for an item. It is safe on a nil baseline.
func (b *Baseline) Lookup(itemID uuid.UUID) (BaselineLine, bool) {
	if b == nil {
		return BaselineLine{}, false
	}
	l, ok := b.lines[itemID]
	return l, ok
}

// Lines returns a copy of the baseline entries in load order
func (b *Baseline) Lines() []BaselineLine {
	if b == nil {
		return nil
	}
	out := make([]BaselineLine, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.lines[id])
	}
	return out
}

// ItemIDs returns the baseline item ids sorted for deterministic output
func (b *Baseline) ItemIDs() []uuid.UUID {
	if b == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(b.lines))
	for id := range b.lines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
