package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// SessionView is the state of an editing session shown to the editor.
// Statuses is what the status selector may offer for this session.
type SessionView struct {
	ID               uuid.UUID
	Draft            *invoice.Draft
	Baseline         []invoice.BaselineLine
	BaselineStatus   *invoice.Status
	BaselineDeducted bool
	Statuses         []invoice.Status
	Totals           invoice.Totals
	CreatedAt        time.Time
	ExpiresAt        time.Time
}

func newSessionView(sess Session) *SessionView {
	view := &SessionView{
		ID:        sess.ID,
		Draft:     sess.Draft,
		Totals:    sess.Draft.Totals(),
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}
	if sess.Baseline != nil {
		status := sess.Baseline.Status()
		view.BaselineStatus = &status
		view.Baseline = sess.Baseline.Lines()
		view.BaselineDeducted = sess.Baseline.Deducted()
	}
	view.Statuses = invoice.SelectableStatuses(view.BaselineStatus)
	return view
}

// EvaluateInput is a draft to check together with the prompt keys the user
// has already confirmed. A nil Draft evaluates the draft stored in the session.
type EvaluateInput struct {
	Draft        *invoice.Draft
	Acknowledged []string
}

// SubmitInput asks to save the session draft. Declined means the user
// dismissed a confirmation, which aborts the save.
type SubmitInput struct {
	Draft        *invoice.Draft
	Acknowledged []string
	Declined     bool
}

// Evaluation is the guard verdict for a session draft. Lines holds one
// check per draft line, in draft order; it is empty after a submit.
type Evaluation struct {
	SessionID uuid.UUID
	Outcome   invoice.Outcome
	Lines     []invoice.LineCheck
}

// SubmitResult is the result of a save attempt. Invoice is set only when
// the guard approved and the store accepted the invoice.
type SubmitResult struct {
	Evaluation
	Invoice *invoice.Invoice
}

// Saved reports whether the invoice was persisted
func (r *SubmitResult) Saved() bool {
	return r.Invoice != nil
}

// TotalsInput is a stateless totals recompute request
type TotalsInput struct {
	Lines          []invoice.Line
	Discount       decimal.Decimal
	FreeItemsValue *decimal.Decimal
}

// SettlementEvaluation is the settlement guard verdict against the balance
// fetched for the check. Reason is nil when the settlement may be recorded.
type SettlementEvaluation struct {
	Balance invoice.InvoiceBalance
	Reason  error
}

// Approved reports whether the settlement may be recorded
func (e *SettlementEvaluation) Approved() bool {
	return e.Reason == nil
}

// AdjustmentInput is a requested stock correction for one item
type AdjustmentInput struct {
	NewQuantity  decimal.Decimal
	Reason       string
	Acknowledged []string
	Declined     bool
}

// AdjustmentEvaluation is the adjustment guard verdict
type AdjustmentEvaluation struct {
	Adjustment invoice.StockAdjustment
	Outcome    invoice.Outcome
}

// AdjustmentResult is the result of applying an adjustment. Item is set
// only when the store accepted the adjustment.
type AdjustmentResult struct {
	AdjustmentEvaluation
	Item *invoice.Item
}
