package invoice

import "github.com/shopspring/decimal"

// Totals is the derived money summary of an invoice
type Totals struct {
	Subtotal           decimal.Decimal  `json:"subtotal"`
	Discount           decimal.Decimal  `json:"discount"`
	TotalAfterDiscount decimal.Decimal  `json:"total_after_discount"`
	FreeItemsValue     *decimal.Decimal `json:"free_items_value,omitempty"`
}

// CalculateTotals sums the chargeable lines and applies the discount.
// Free lines contribute nothing. freeItemsValue is
// supplied by the caller and passed through unchanged. Amounts keep full
// precision; use Rounded for display.
func CalculateTotals(lines []Line, discount decimal.Decimal, freeItemsValue *decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}

	t := Totals{
		Subtotal:           subtotal,
		Discount:           discount,
		TotalAfterDiscount: subtotal.Sub(discount),
	}
	if freeItemsValue != nil {
		v := *freeItemsValue
		t.FreeItemsValue = &v
	}
	return t
}

// Rounded returns the totals rounded half away from zero to 2 places
func (t Totals) Rounded() Totals {
	r := Totals{
		Subtotal:           t.Subtotal.Round(2),
		Discount:           t.Discount.Round(2),
		TotalAfterDiscount: t.TotalAfterDiscount.Round(2),
	}
	if t.FreeItemsValue != nil {
		v := t.FreeItemsValue.Round(2)
		r.FreeItemsValue = &v
	}
	return r
}
