package invoice

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceChange is a line whose price differs from the loaded invoice
type PriceChange struct {
	ItemID        uuid.UUID       `json:"item_id"`
	ItemLabel     string          `json:"item_label"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	NewPrice      decimal.Decimal `json:"new_price"`
}

// QuantityAdjustment is a quantity change relative to the baseline
type QuantityAdjustment struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ItemLabel string          `json:"item_label"`
	Original  decimal.Decimal `json:"original"`
	Requested decimal.Decimal `json:"requested"`
}

// LineCheck is the result of validating one line while it is being edited
type LineCheck struct {
	Err       error
	Condition StockCondition
}

// OK reports whether the line has no blocking problem
func (c LineCheck) OK() bool {
	return c.Err == nil
}

// StockRequirement is how much stock a line quantity consumes. When the
// loaded invoice deducted stock, the quantity it already held is still out
// of stock, so only the growth needs to be available. An invoice that never
// deducted needs its full quantity.
func StockRequirement(itemID uuid.UUID, quantity decimal.Decimal, baseline *Baseline) decimal.Decimal {
	bl, ok := baseline.Lookup(itemID)
	if !ok || !baseline.Deducted() {
		return quantity
	}
	extra := quantity.Sub(bl.Quantity)
	if extra.IsNegative() {
		return decimal.Zero
	}
	return extra
}

// ValidateQuantity checks one line against stock and the baseline.
// A missing snapshot entry is not an error here; CheckLine reports it.
func ValidateQuantity(line Line, baseline *Baseline, snapshot StockSnapshot, deductFromStock bool) error {
	if !line.HasItem() {
		return nil
	}
	itemID := *line.ItemID

	if deductFromStock {
		if level, ok := snapshot.Lookup(itemID); ok {
			required := StockRequirement(itemID, line.Quantity, baseline)
			if required.GreaterThan(level.Available) {
				return &ExceedsStockError{
					ItemLabel: line.Label(),
					Available: level.Available,
					Requested: required,
				}
			}
		}
	}

	if bl, ok := baseline.Lookup(itemID); ok && line.Quantity.GreaterThan(bl.Quantity) {
		return &QuantityIncreaseOnEditError{Increases: []QuantityIncrease{{
			ItemLabel: line.Label(),
			Original:  bl.Quantity,
			Requested: line.Quantity,
		}}}
	}
	return nil
}

// CheckLine validates a line for continuous feedback during editing
func CheckLine(index int, line Line, baseline *Baseline, snapshot StockSnapshot, deductFromStock bool) LineCheck {
	if err := line.Validate(index); err != nil {
		return LineCheck{Err: err}
	}
	if err := ValidateQuantity(line, baseline, snapshot, deductFromStock); err != nil {
		return LineCheck{Err: err, Condition: StockInsufficient}
	}
	if !deductFromStock || !line.HasItem() {
		return LineCheck{Condition: StockSufficient}
	}
	required := StockRequirement(*line.ItemID, line.Quantity, baseline)
	if required.IsZero() {
		return LineCheck{Condition: StockSufficient}
	}
	level, ok := snapshot.Lookup(*line.ItemID)
	return LineCheck{Condition: ClassifyStock(required, level, ok)}
}

// DetectPriceChanges lists chargeable lines whose price differs from the
// baseline price of the same item
func DetectPriceChanges(lines []Line, baseline *Baseline) []PriceChange {
	if baseline == nil {
		return nil
	}
	var changes []PriceChange
	seen := make(map[uuid.UUID]bool)
	for _, l := range lines {
		if l.Free || !l.HasItem() || seen[*l.ItemID] {
			continue
		}
		bl, ok := baseline.Lookup(*l.ItemID)
		if !ok || bl.UnitPrice.Equal(l.UnitPrice) {
			continue
		}
		seen[*l.ItemID] = true
		changes = append(changes, PriceChange{
			ItemID:        *l.ItemID,
			ItemLabel:     l.Label(),
			OriginalPrice: bl.UnitPrice,
			NewPrice:      l.UnitPrice,
		})
	}
	return changes
}

// aggregatedQuantity sums draft quantities per item in first-seen order
type aggregatedQuantity struct {
	itemID   uuid.UUID
	label    string
	quantity decimal.Decimal
}

func aggregateQuantities(lines []Line) []aggregatedQuantity {
	index := make(map[uuid.UUID]int)
	var out []aggregatedQuantity
	for _, l := range lines {
		if !l.HasItem() {
			continue
		}
		id := *l.ItemID
		if i, ok := index[id]; ok {
			out[i].quantity = out[i].quantity.Add(l.Quantity)
			continue
		}
		index[id] = len(out)
		out = append(out, aggregatedQuantity{itemID: id, label: l.Label(), quantity: l.Quantity})
	}
	return out
}

// DetectQuantityIncreases lists items whose total quantity grew past the baseline
func DetectQuantityIncreases(lines []Line, baseline *Baseline) []QuantityIncrease {
	if baseline == nil {
		return nil
	}
	var increases []QuantityIncrease
	for _, agg := range aggregateQuantities(lines) {
		bl, ok := baseline.Lookup(agg.itemID)
		if !ok || !agg.quantity.GreaterThan(bl.Quantity) {
			continue
		}
		increases = append(increases, QuantityIncrease{
			ItemLabel: agg.label,
			Original:  bl.Quantity,
			Requested: agg.quantity,
		})
	}
	return increases
}

// DetectLargeAdjustments lists baseline items whose quantity moved by more
// than ratio of the original. Items removed from the draft count as a full
// reduction.
func DetectLargeAdjustments(lines []Line, baseline *Baseline, ratio decimal.Decimal) []QuantityAdjustment {
	if baseline == nil {
		return nil
	}
	current := make(map[uuid.UUID]aggregatedQuantity)
	for _, agg := range aggregateQuantities(lines) {
		current[agg.itemID] = agg
	}

	var adjustments []QuantityAdjustment
	for _, bl := range baseline.Lines() {
		requested := decimal.Zero
		label := bl.Label
		if agg, ok := current[bl.ItemID]; ok {
			requested = agg.quantity
			label = agg.label
		}
		if !exceedsRatio(bl.Quantity, requested, ratio) {
			continue
		}
		adjustments = append(adjustments, QuantityAdjustment{
			ItemID:    bl.ItemID,
			ItemLabel: label,
			Original:  bl.Quantity,
			Requested: requested,
		})
	}
	return adjustments
}

// exceedsRatio reports whether |to - from| / from > ratio. Any change from
// zero counts as large.
func exceedsRatio(from, to, ratio decimal.Decimal) bool {
	delta := to.Sub(from).Abs()
	if delta.IsZero() {
		return false
	}
	if from.IsZero() {
		return true
	}
	return delta.Div(from).GreaterThan(ratio)
}

// checkStock classifies every item of the draft that needs stock, in
// first-seen order. Items needing nothing beyond their baseline are skipped.
func checkStock(lines []Line, baseline *Baseline, snapshot StockSnapshot) []StockFinding {
	var findings []StockFinding
	for _, agg := range aggregateQuantities(lines) {
		required := StockRequirement(agg.itemID, agg.quantity, baseline)
		if required.IsZero() {
			continue
		}
		level, ok := snapshot.Lookup(agg.itemID)
		f := StockFinding{
			ItemID:    agg.itemID,
			ItemLabel: agg.label,
			Requested: required,
			Condition: ClassifyStock(required, level, ok),
		}
		if ok {
			available, minStock := level.Available, level.MinStock
			f.Available = &available
			f.MinStock = &minStock
		}
		findings = append(findings, f)
	}
	return findings
}
