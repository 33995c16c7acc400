package invoice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/shared"
)

// Error codes of the local validation errors
const (
	CodeIncompleteInvoice       = "INCOMPLETE_INVOICE"
	CodeInvalidLine             = "INVALID_LINE"
	CodeInvalidDiscount         = "INVALID_DISCOUNT"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodePaymentViolation        = "PAYMENT_VIOLATION"
	CodeQuantityIncreaseOnEdit  = "QUANTITY_INCREASE_ON_EDIT"
	CodeExceedsStock            = "EXCEEDS_STOCK"
	CodeBelowMinimumAmount      = "BELOW_MINIMUM_AMOUNT"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeNonPositiveAmount       = "NON_POSITIVE_AMOUNT"
	CodeExceedsRemainingBalance = "EXCEEDS_REMAINING_BALANCE"
	CodeIncompleteSettlement    = "INCOMPLETE_SETTLEMENT"
	CodeInvoiceNotSettleable    = "INVOICE_NOT_SETTLEABLE"
	CodeInvalidAdjustment       = "INVALID_ADJUSTMENT"
)

// RuleError is implemented by every local validation error
type RuleError interface {
	error
	Code() string
}

// CodeOf returns the rule code carried by err, or "" when err is not a rule error
func CodeOf(err error) string {
	var re RuleError
	if errors.As(err, &re) {
		return re.Code()
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IncompleteInvoiceError lists required fields that are missing
type IncompleteInvoiceError struct {
	Missing []string
}

func (e *IncompleteInvoiceError) Error() string {
	return "invoice is incomplete: missing " + strings.Join(e.Missing, ", ")
}

func (e *IncompleteInvoiceError) Code() string { return CodeIncompleteInvoice }

func (e *IncompleteInvoiceError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// InvalidLineError reports a line with a negative price or quantity
type InvalidLineError struct {
	Index  int
	Label  string
	Reason string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("line %d (%s): %s", e.Index+1, e.Label, e.Reason)
}

func (e *InvalidLineError) Code() string { return CodeInvalidLine }

func (e *InvalidLineError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// InvalidDiscountError reports a discount outside [0, subtotal]
type InvalidDiscountError struct {
	Discount decimal.Decimal
	Subtotal decimal.Decimal
}

func (e *InvalidDiscountError) Error() string {
	if e.Discount.IsNegative() {
		return "discount cannot be negative"
	}
	return fmt.Sprintf("discount %s exceeds subtotal %s", formatAmount(e.Discount), formatAmount(e.Subtotal))
}

func (e *InvalidDiscountError) Code() string { return CodeInvalidDiscount }

func (e *InvalidDiscountError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// StatusTransitionError reports an illegal status change
type StatusTransitionError struct {
	From *Status
	To   Status
}

func (e *StatusTransitionError) Error() string {
	if e.From == nil {
		return fmt.Sprintf("a new invoice cannot be created as %s", e.To)
	}
	return fmt.Sprintf("cannot change invoice status from %s to %s", *e.From, e.To)
}

func (e *StatusTransitionError) Code() string { return CodeInvalidStatusTransition }

func (e *StatusTransitionError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// PaymentViolationError reports a payment inconsistent with the status or total
type PaymentViolationError struct {
	Detail string
}

func (e *PaymentViolationError) Error() string {
	return e.Detail
}

func (e *PaymentViolationError) Code() string { return CodePaymentViolation }

func (e *PaymentViolationError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// QuantityIncrease is an item whose quantity grew past its baseline
type QuantityIncrease struct {
	ItemLabel string          `json:"item_label"`
	Original  decimal.Decimal `json:"original"`
	Requested decimal.Decimal `json:"requested"`
}

// QuantityIncreaseOnEditError rejects quantity increases on an existing invoice
type QuantityIncreaseOnEditError struct {
	Increases []QuantityIncrease
}

func (e *QuantityIncreaseOnEditError) Error() string {
	parts := make([]string, 0, len(e.Increases))
	for _, inc := range e.Increases {
		parts = append(parts, fmt.Sprintf("%s (%s -> %s)", inc.ItemLabel, inc.Original.String(), inc.Requested.String()))
	}
	return "quantities of an existing invoice can only be reduced; create a new invoice to add more: " +
		strings.Join(parts, ", ")
}

func (e *QuantityIncreaseOnEditError) Code() string { return CodeQuantityIncreaseOnEdit }

func (e *QuantityIncreaseOnEditError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// ExceedsStockError reports a single line asking for more than is available
type ExceedsStockError struct {
	ItemLabel string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *ExceedsStockError) Error() string {
	return fmt.Sprintf("%s: only %s available, requested %s", e.ItemLabel, e.Available.String(), e.Requested.String())
}

func (e *ExceedsStockError) Code() string { return CodeExceedsStock }

func (e *ExceedsStockError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// BelowMinimumAmountError reports a total under the policy minimum
type BelowMinimumAmountError struct {
	Minimum decimal.Decimal
	Total   decimal.Decimal
}

func (e *BelowMinimumAmountError) Error() string {
	return fmt.Sprintf("invoice total %s is below the minimum of %s",
		formatAmount(e.Total), formatAmount(e.Minimum))
}

func (e *BelowMinimumAmountError) Code() string { return CodeBelowMinimumAmount }

func (e *BelowMinimumAmountError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// InsufficientStockError aggregates every item that cannot be covered by stock
type InsufficientStockError struct {
	Lines []StockFinding
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, f := range e.Lines {
		available := "unknown"
		if f.Available != nil {
			available = f.Available.String()
		}
		parts = append(parts, fmt.Sprintf("%s (requested %s, available %s)", f.ItemLabel, f.Requested.String(), available))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

func (e *InsufficientStockError) Code() string { return CodeInsufficientStock }

func (e *InsufficientStockError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// NonPositiveAmountError rejects a settlement of zero or less
type NonPositiveAmountError struct {
	Amount decimal.Decimal
}

func (e *NonPositiveAmountError) Error() string {
	return "settlement amount must be greater than zero"
}

func (e *NonPositiveAmountError) Code() string { return CodeNonPositiveAmount }

func (e *NonPositiveAmountError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// ExceedsRemainingBalanceError rejects a settlement larger than what is owed
type ExceedsRemainingBalanceError struct {
	Remaining decimal.Decimal
	Amount    decimal.Decimal
}

func (e *ExceedsRemainingBalanceError) Error() string {
	return fmt.Sprintf("settlement amount %s exceeds the remaining balance of %s",
		formatAmount(e.Amount), formatAmount(e.Remaining))
}

func (e *ExceedsRemainingBalanceError) Code() string { return CodeExceedsRemainingBalance }

func (e *ExceedsRemainingBalanceError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// IncompleteSettlementError lists settlement fields that are missing
type IncompleteSettlementError struct {
	Missing []string
}

func (e *IncompleteSettlementError) Error() string {
	return "settlement is incomplete: missing " + strings.Join(e.Missing, ", ")
}

func (e *IncompleteSettlementError) Code() string { return CodeIncompleteSettlement }

func (e *IncompleteSettlementError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// NotSettleableError rejects settlements against paid or deleted invoices
type NotSettleableError struct {
	Status Status
}

func (e *NotSettleableError) Error() string {
	return fmt.Sprintf("invoice with status %s cannot receive settlements", e.Status)
}

func (e *NotSettleableError) Code() string { return CodeInvoiceNotSettleable }

func (e *NotSettleableError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}

// InvalidAdjustmentError rejects a malformed manual stock adjustment
type InvalidAdjustmentError struct {
	Reason string
}

func (e *InvalidAdjustmentError) Error() string {
	return "invalid stock adjustment: " + e.Reason
}

func (e *InvalidAdjustmentError) Code() string { return CodeInvalidAdjustment }

func (e *InvalidAdjustmentError) Unwrap() error {
	return shared.NewDomainError(e.Code(), e.Error())
}
