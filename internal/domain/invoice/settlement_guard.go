package invoice

import (
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidateSettlement checks 0 < amount <= remaining. remaining is the value
// last fetched from the store and may be stale.
func ValidateSettlement(amount, remaining decimal.Decimal) error {
	if !amount.IsPositive() {
		return &NonPositiveAmountError{Amount: amount}
	}
	if amount.GreaterThan(remaining) {
		return &ExceedsRemainingBalanceError{Remaining: remaining, Amount: amount}
	}
	return nil
}

// SettlementGuard decides whether a settlement may be persisted. It never
// changes the invoice; the store owns the settled and remaining amounts.
type SettlementGuard struct{}

// NewSettlementGuard creates a settlement guard
func NewSettlementGuard() *SettlementGuard {
	return &SettlementGuard{}
}

// Evaluate validates a settlement draft against the invoice balance
func (g *SettlementGuard) Evaluate(draft SettlementDraft, balance InvoiceBalance) error {
	if err := checkSettlementFields(draft); err != nil {
		return err
	}
	if balance.Status == StatusDeleted || balance.Status == StatusPaid {
		return &NotSettleableError{Status: balance.Status}
	}
	return ValidateSettlement(draft.Amount, balance.Remaining)
}

func checkSettlementFields(draft SettlementDraft) error {
	var missing []string
	if draft.InvoiceID == uuid.Nil {
		missing = append(missing, "invoice")
	}
	if draft.Date.IsZero() {
		missing = append(missing, "date")
	}
	if !draft.Method.IsValid() {
		missing = append(missing, "payment_method")
	}
	switch draft.Method {
	case PaymentMethodCard:
		if !isDigits(draft.CardLast4, 4) {
			missing = append(missing, "card_last4")
		}
	case PaymentMethodCheck:
		if draft.CheckNumber == "" {
			missing = append(missing, "check_number")
		}
	case PaymentMethodBankTransfer:
		if draft.Reference == "" {
			missing = append(missing, "reference")
		}
	}
	if len(missing) > 0 {
		return &IncompleteSettlementError{Missing: missing}
	}
	return nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
