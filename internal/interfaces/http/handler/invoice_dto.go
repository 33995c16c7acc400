package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/application/invoicing"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// EvaluateRequest is a draft to check plus the prompt keys already confirmed.
// Without a draft the session's stored draft is evaluated.
type EvaluateRequest struct {
	Draft        *invoice.Draft `json:"draft"`
	Acknowledged []string       `json:"acknowledged" binding:"max=50"`
}

// SubmitRequest asks to save the session draft. declined=true aborts.
type SubmitRequest struct {
	Draft        *invoice.Draft `json:"draft"`
	Acknowledged []string       `json:"acknowledged" binding:"max=50"`
	Declined     bool           `json:"declined"`
}

// TotalsRequest is a stateless totals recompute
type TotalsRequest struct {
	Lines          []invoice.Line   `json:"lines"`
	Discount       decimal.Decimal  `json:"discount"`
	FreeItemsValue *decimal.Decimal `json:"free_items_value"`
}

// SessionResponse is the state of an editing session
type SessionResponse struct {
	ID               uuid.UUID              `json:"id"`
	IsNew            bool                   `json:"is_new"`
	Draft            *invoice.Draft         `json:"draft"`
	Baseline         []invoice.BaselineLine `json:"baseline,omitempty"`
	BaselineStatus   *invoice.Status        `json:"baseline_status,omitempty"`
	BaselineDeducted bool                   `json:"baseline_deducted_stock"`
	Statuses         []invoice.Status       `json:"statuses"`
	Totals           invoice.Totals         `json:"totals"`
	CreatedAt        time.Time              `json:"created_at"`
	ExpiresAt        time.Time              `json:"expires_at"`
}

func newSessionResponse(v *invoicing.SessionView) SessionResponse {
	return SessionResponse{
		ID:               v.ID,
		IsNew:            v.BaselineStatus == nil,
		Draft:            v.Draft,
		Baseline:         v.Baseline,
		BaselineStatus:   v.BaselineStatus,
		BaselineDeducted: v.BaselineDeducted,
		Statuses:         v.Statuses,
		Totals:           v.Totals.Rounded(),
		CreatedAt:        v.CreatedAt,
		ExpiresAt:        v.ExpiresAt,
	}
}

// EvaluationResponse is the guard verdict for a session draft with one
// check per draft line
type EvaluationResponse struct {
	SessionID uuid.UUID           `json:"session_id"`
	Outcome   OutcomeResponse     `json:"outcome"`
	Lines     []LineCheckResponse `json:"lines"`
}

// LineCheckResponse is the inline feedback for one draft line
type LineCheckResponse struct {
	Index     int                    `json:"index"`
	Valid     bool                   `json:"valid"`
	Code      string                 `json:"code,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Condition invoice.StockCondition `json:"condition,omitempty"`
}

func newLineCheckResponses(checks []invoice.LineCheck) []LineCheckResponse {
	out := make([]LineCheckResponse, len(checks))
	for i, c := range checks {
		out[i] = LineCheckResponse{Index: i, Valid: c.OK(), Condition: c.Condition}
		if c.Err != nil {
			out[i].Code = invoice.CodeOf(c.Err)
			out[i].Message = c.Err.Error()
		}
	}
	return out
}

// SubmitResponse is the result of a successful save
type SubmitResponse struct {
	SessionID uuid.UUID        `json:"session_id"`
	Saved     bool             `json:"saved"`
	Outcome   OutcomeResponse  `json:"outcome"`
	Invoice   *InvoiceResponse `json:"invoice,omitempty"`
}

// InvoiceResponse is a persisted invoice
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	ClientID       uuid.UUID             `json:"client_id"`
	ClientName     string                `json:"client_name,omitempty"`
	Status         invoice.Status        `json:"status"`
	Lines          []invoice.Line        `json:"lines"`
	Discount       decimal.Decimal       `json:"discount"`
	VATPercent     decimal.Decimal       `json:"vat_percent"`
	PaymentMethod  invoice.PaymentMethod `json:"payment_method,omitempty"`
	Total          decimal.Decimal       `json:"total"`
	AmountSettled  decimal.Decimal       `json:"amount_settled"`
	Remaining      decimal.Decimal       `json:"remaining"`
	FreeItemsValue *decimal.Decimal      `json:"free_items_value,omitempty"`
	IssuedAt       time.Time             `json:"issued_at"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func newInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	return &InvoiceResponse{
		ID:             inv.ID,
		ClientID:       inv.ClientID,
		ClientName:     inv.ClientName,
		Status:         inv.Status,
		Lines:          inv.Lines,
		Discount:       inv.Discount,
		VATPercent:     inv.VATPercent,
		PaymentMethod:  inv.PaymentMethod,
		Total:          inv.Total,
		AmountSettled:  inv.AmountSettled,
		Remaining:      inv.Remaining,
		FreeItemsValue: inv.FreeItemsValue,
		IssuedAt:       inv.IssuedAt,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

// SettlementRequest is a proposed settlement
type SettlementRequest struct {
	InvoiceID     uuid.UUID             `json:"invoice_id"`
	Amount        decimal.Decimal       `json:"amount"`
	Date          time.Time             `json:"date"`
	PaymentMethod invoice.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method"`
	Reference     string                `json:"reference" binding:"max=100"`
	CardLast4     string                `json:"card_last4" binding:"max=4"`
	CheckNumber   string                `json:"check_number" binding:"max=50"`
	BankName      string                `json:"bank_name" binding:"max=100"`
	Notes         string                `json:"notes" binding:"max=500"`
}

// ToDraft converts the request into a settlement draft
func (r SettlementRequest) ToDraft() invoice.SettlementDraft {
	return invoice.SettlementDraft{
		InvoiceID:   r.InvoiceID,
		Amount:      r.Amount,
		Date:        r.Date,
		Method:      r.PaymentMethod,
		Reference:   r.Reference,
		CardLast4:   r.CardLast4,
		CheckNumber: r.CheckNumber,
		BankName:    r.BankName,
		Notes:       r.Notes,
	}
}

// SettlementEvaluationResponse is the settlement guard verdict
type SettlementEvaluationResponse struct {
	Approved bool                   `json:"approved"`
	Code     string                 `json:"code,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Details  any                    `json:"details,omitempty"`
	Balance  invoice.InvoiceBalance `json:"balance"`
}

func newSettlementEvaluationResponse(e *invoicing.SettlementEvaluation) SettlementEvaluationResponse {
	resp := SettlementEvaluationResponse{Approved: e.Approved(), Balance: e.Balance}
	if e.Reason != nil {
		resp.Code = invoice.CodeOf(e.Reason)
		resp.Message = e.Reason.Error()
		resp.Details = ruleDetails(e.Reason)
	}
	return resp
}

// SettlementResponse is a recorded settlement
type SettlementResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceID     uuid.UUID             `json:"invoice_id"`
	Amount        decimal.Decimal       `json:"amount"`
	Date          time.Time             `json:"date"`
	PaymentMethod invoice.PaymentMethod `json:"payment_method"`
	Reference     string                `json:"reference,omitempty"`
	CardLast4     string                `json:"card_last4,omitempty"`
	CheckNumber   string                `json:"check_number,omitempty"`
	BankName      string                `json:"bank_name,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

func newSettlementResponse(s *invoice.Settlement) SettlementResponse {
	return SettlementResponse{
		ID:            s.ID,
		InvoiceID:     s.InvoiceID,
		Amount:        s.Amount,
		Date:          s.Date,
		PaymentMethod: s.Method,
		Reference:     s.Reference,
		CardLast4:     s.CardLast4,
		CheckNumber:   s.CheckNumber,
		BankName:      s.BankName,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
	}
}

// ItemQueryRequest is an item search. page is 0-based.
type ItemQueryRequest struct {
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AdjustmentRequest is a manual stock correction
type AdjustmentRequest struct {
	NewQuantity  decimal.Decimal `json:"new_quantity"`
	Reason       string          `json:"reason" binding:"max=500"`
	Acknowledged []string        `json:"acknowledged" binding:"max=50"`
	Declined     bool            `json:"declined"`
}

func (r AdjustmentRequest) toInput() invoicing.AdjustmentInput {
	return invoicing.AdjustmentInput{
		NewQuantity:  r.NewQuantity,
		Reason:       r.Reason,
		Acknowledged: r.Acknowledged,
		Declined:     r.Declined,
	}
}

// AdjustmentResponse is the adjustment guard verdict, with the updated
// item once applied
type AdjustmentResponse struct {
	Adjustment invoice.StockAdjustment `json:"adjustment"`
	Outcome    OutcomeResponse         `json:"outcome"`
	Item       *invoice.Item           `json:"item,omitempty"`
}
