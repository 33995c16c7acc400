package invoice

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockAdjustment is a manual correction of an item's stock level
type StockAdjustment struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ItemLabel   string          `json:"item_label"`
	Current     StockLevel      `json:"current"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason"`
}

// Delta is the signed change the adjustment applies
func (a StockAdjustment) Delta() decimal.Decimal {
	return a.NewQuantity.Sub(a.Current.Available)
}

// Payload converts an approved adjustment into the persist request
func (a StockAdjustment) Payload() StockAdjustmentPayload {
	return StockAdjustmentPayload{
		ItemID:      a.ItemID,
		NewQuantity: a.NewQuantity,
		Reason:      strings.TrimSpace(a.Reason),
	}
}

// EvaluateStockAdjustment validates a manual adjustment. It blocks on a
// negative target or a missing reason, and asks for confirmation when the
// change is large or leaves the item at or below its minimum.
func EvaluateStockAdjustment(adj StockAdjustment, policy Policy, acks Acknowledgements) Outcome {
	var missing []string
	if adj.ItemID == uuid.Nil {
		missing = append(missing, "item")
	}
	if strings.TrimSpace(adj.Reason) == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return Blocked(Totals{}, &InvalidAdjustmentError{Reason: "missing " + strings.Join(missing, ", ")})
	}
	if adj.NewQuantity.IsNegative() {
		return Blocked(Totals{}, &InvalidAdjustmentError{Reason: "new quantity cannot be negative"})
	}
	if adj.Delta().IsZero() {
		return Blocked(Totals{}, &InvalidAdjustmentError{Reason: "new quantity equals the current quantity"})
	}

	var prompts []Prompt
	if adj.NewQuantity.LessThanOrEqual(adj.Current.MinStock) {
		available, minStock := adj.Current.Available, adj.Current.MinStock
		condition := StockWillGoLow
		if adj.NewQuantity.IsZero() {
			condition = StockWillGoOutOfStock
		}
		prompts = append(prompts, newAdjustmentStockPrompt(StockFinding{
			ItemID:    adj.ItemID,
			ItemLabel: adj.label(),
			Requested: available.Sub(adj.NewQuantity),
			Available: &available,
			MinStock:  &minStock,
			Condition: condition,
		}))
	}
	if exceedsRatio(adj.Current.Available, adj.NewQuantity, policy.LargeAdjustmentRatio) {
		prompts = append(prompts, newLargeAdjustmentPrompt([]QuantityAdjustment{{
			ItemID:    adj.ItemID,
			ItemLabel: adj.label(),
			Original:  adj.Current.Available,
			Requested: adj.NewQuantity,
		}}))
	}
	return resolve(Totals{}, prompts, acks)
}

func (a StockAdjustment) label() string {
	if a.ItemLabel != "" {
		return a.ItemLabel
	}
	return fmt.Sprintf("item %s", a.ItemID)
}
