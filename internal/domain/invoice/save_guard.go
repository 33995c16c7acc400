package invoice

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy holds the configurable thresholds of the guards
type Policy struct {
	// MinimumInvoiceAmount is the smallest total after discount that may be saved
	MinimumInvoiceAmount decimal.Decimal
	// LargeAdjustmentRatio is the relative quantity change above which a
	// warning is raised
	LargeAdjustmentRatio decimal.Decimal
}

// DefaultPolicy returns the standard thresholds
func DefaultPolicy() Policy {
	return Policy{
		MinimumInvoiceAmount: decimal.RequireFromString("10.00"),
		LargeAdjustmentRatio: decimal.RequireFromString("0.20"),
	}
}

// SaveGuard decides whether an invoice draft may be persisted
type SaveGuard struct {
	policy Policy
}

// NewSaveGuard creates a save guard with the given policy
func NewSaveGuard(policy Policy) *SaveGuard {
	return &SaveGuard{policy: policy}
}

// Policy returns the thresholds the guard applies
func (g *SaveGuard) Policy() Policy {
	return g.policy
}

// Evaluate runs the save rules in order and stops at the first blocking
// failure. baseline is nil for a new invoice. Prompts whose keys are in acks
// count as granted. Evaluate has no side effects.
func (g *SaveGuard) Evaluate(draft *Draft, baseline *Baseline, snapshot StockSnapshot, acks Acknowledgements) Outcome {
	totals := draft.Totals()

	if err := g.checkRequired(draft, baseline, totals); err != nil {
		return Blocked(totals, err)
	}

	var current *Status
	if baseline != nil {
		s := baseline.Status()
		current = &s
	}
	if err := ValidateTransition(current, draft.Status); err != nil {
		return Blocked(totals, err)
	}
	if err := CheckPayment(draft.Status, draft.InitialPayment, totals.TotalAfterDiscount); err != nil {
		return Blocked(totals, err)
	}

	var prompts []Prompt
	if changes := DetectPriceChanges(draft.Lines, baseline); len(changes) > 0 {
		prompts = append(prompts, newPriceChangePrompt(changes))
	}

	if increases := DetectQuantityIncreases(draft.Lines, baseline); len(increases) > 0 {
		return Blocked(totals, &QuantityIncreaseOnEditError{Increases: increases})
	}

	if totals.TotalAfterDiscount.LessThan(g.policy.MinimumInvoiceAmount) {
		return Blocked(totals, &BelowMinimumAmountError{
			Minimum: g.policy.MinimumInvoiceAmount,
			Total:   totals.TotalAfterDiscount,
		})
	}

	if draft.DeductFromStock {
		var insufficient, warnings, unverifiable []StockFinding
		for _, f := range checkStock(draft.Lines, baseline, snapshot) {
			switch f.Condition {
			case StockInsufficient:
				insufficient = append(insufficient, f)
			case StockWillGoLow, StockWillGoOutOfStock:
				warnings = append(warnings, f)
			case StockUnverifiable:
				unverifiable = append(unverifiable, f)
			}
		}
		if len(insufficient) > 0 {
			return Blocked(totals, &InsufficientStockError{Lines: insufficient})
		}
		if len(warnings) > 0 {
			prompts = append(prompts, newStockWarningPrompt(warnings))
		}
		if len(unverifiable) > 0 {
			prompts = append(prompts, newStockUnverifiablePrompt(unverifiable))
		}
	}

	if adjustments := DetectLargeAdjustments(draft.Lines, baseline, g.policy.LargeAdjustmentRatio); len(adjustments) > 0 {
		prompts = append(prompts, newLargeAdjustmentPrompt(adjustments))
	}

	if current != nil && *current != draft.Status {
		prompts = append(prompts, newStatusChangePrompt(*current, draft.Status))
	}

	return resolve(totals, prompts, acks)
}

// checkRequired covers the shape of the draft: required references, line
// values and the discount range
func (g *SaveGuard) checkRequired(draft *Draft, baseline *Baseline, totals Totals) error {
	var missing []string
	if draft.ClientID == nil || *draft.ClientID == uuid.Nil {
		missing = append(missing, "client")
	}
	if len(draft.Lines) == 0 {
		missing = append(missing, "lines")
	}
	for i, l := range draft.Lines {
		if !l.HasItem() {
			missing = append(missing, fmt.Sprintf("lines[%d].item", i))
		}
	}
	if draft.Status == "" {
		missing = append(missing, "status")
	}
	if baseline != nil && (draft.InvoiceID == nil || *draft.InvoiceID != baseline.InvoiceID()) {
		missing = append(missing, "invoice_id")
	}
	if len(missing) > 0 {
		return &IncompleteInvoiceError{Missing: missing}
	}

	for i, l := range draft.Lines {
		if err := l.Validate(i); err != nil {
			return err
		}
	}
	if draft.Discount.IsNegative() || draft.Discount.GreaterThan(totals.Subtotal) {
		return &InvalidDiscountError{Discount: draft.Discount, Subtotal: totals.Subtotal}
	}
	return nil
}
