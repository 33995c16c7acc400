package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/shared/valueobject"
)

// Status represents the lifecycle status of an invoice
type Status string

const (
	// StatusPending is an unpaid invoice
	StatusPending Status = "PENDING"
	// StatusDept is a partially paid invoice carrying a debt
	StatusDept Status = "DEPT"
	// StatusPaid is a fully paid invoice
	StatusPaid Status = "PAID"
	// StatusDeleted is the tombstone left by the delete action. It is never
	// chosen from the status selector.
	StatusDeleted Status = "DELETED"
)

// IsValid checks if the status is a valid value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusDept, StatusPaid, StatusDeleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusDeleted
}

// IsSelectable reports whether the status can be picked by a user when
// creating or editing an invoice
func (s Status) IsSelectable() bool {
	return s == StatusPending || s == StatusDept || s == StatusPaid
}

// CanTransitionTo checks if the status can transition to the target status.
// Staying in the same status counts as a transition so that saving an
// unchanged invoice is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusPending || target == StatusDept || target == StatusPaid
	case StatusDept:
		return target == StatusDept || target == StatusPaid
	case StatusPaid:
		return target == StatusPaid
	default:
		return false
	}
}

// selectorOrder is the order the status selector lists statuses in
var selectorOrder = []Status{StatusPending, StatusDept, StatusPaid}

// Successors returns the statuses reachable from s, in selector order
func (s Status) Successors() []Status {
	out := make([]Status, 0, len(selectorOrder))
	for _, c := range selectorOrder {
		if s.CanTransitionTo(c) {
			out = append(out, c)
		}
	}
	return out
}

// SelectableStatuses lists what the status selector offers: every
// selectable status for a new invoice, the successors of current otherwise
func SelectableStatuses(current *Status) []Status {
	if current == nil {
		return append([]Status(nil), selectorOrder...)
	}
	return current.Successors()
}

// ValidateTransition checks a requested status change. current is nil for a
// new invoice, in which case any selectable status is allowed.
func ValidateTransition(current *Status, target Status) error {
	if !target.IsSelectable() {
		return &StatusTransitionError{From: current, To: target}
	}
	if current == nil {
		return nil
	}
	if !current.CanTransitionTo(target) {
		return &StatusTransitionError{From: current, To: target}
	}
	return nil
}

// CheckPayment cross-checks the chosen status against the initial payment.
// Overpayment is rejected regardless of status; DEPT needs a positive
// payment and PAID needs the full amount.
func CheckPayment(status Status, initialPayment, totalAfterDiscount decimal.Decimal) error {
	if initialPayment.IsNegative() {
		return &PaymentViolationError{Detail: "initial payment cannot be negative"}
	}
	if initialPayment.GreaterThan(totalAfterDiscount) {
		return &PaymentViolationError{Detail: fmt.Sprintf(
			"payment exceeds invoice total, expected at most %s, got %s",
			formatAmount(totalAfterDiscount), formatAmount(initialPayment))}
	}

	switch status {
	case StatusDept:
		if !initialPayment.IsPositive() {
			return &PaymentViolationError{Detail: "DEPT requires a positive initial payment"}
		}
	case StatusPaid:
		if initialPayment.LessThan(totalAfterDiscount) {
			return &PaymentViolationError{Detail: fmt.Sprintf(
				"PAID requires full payment, expected %s, got %s",
				formatAmount(totalAfterDiscount), formatAmount(initialPayment))}
		}
	}
	return nil
}

// formatAmount renders a monetary amount for user messages
func formatAmount(d decimal.Decimal) string {
	return valueobject.MustMoney(d, valueobject.DefaultCurrency).Format(language.English)
}
