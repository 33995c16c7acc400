package handler

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// OutcomeResponse is a guard verdict as shown to the editor
type OutcomeResponse struct {
	Kind         invoice.OutcomeKind `json:"kind"`
	Code         string              `json:"code,omitempty"`
	Message      string              `json:"message,omitempty"`
	Details      any                 `json:"details,omitempty"`
	Prompts      []invoice.Prompt    `json:"prompts,omitempty"`
	Acknowledged []invoice.Prompt    `json:"acknowledged,omitempty"`
	Totals       invoice.Totals      `json:"totals"`
}

func newOutcomeResponse(o invoice.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		Kind:         o.Kind,
		Prompts:      o.Prompts,
		Acknowledged: o.Acknowledged,
		Totals:       o.Totals.Rounded(),
	}
	if o.Reason != nil {
		resp.Code = o.Code()
		resp.Message = o.Reason.Error()
		resp.Details = ruleDetails(o.Reason)
	}
	return resp
}

type amountDetails struct {
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
}

type minimumDetails struct {
	Minimum decimal.Decimal `json:"minimum"`
	Total   decimal.Decimal `json:"total"`
}

type missingDetails struct {
	Missing []string `json:"missing"`
}

// ruleDetails extracts the structured part of a rule error for the client
func ruleDetails(err error) any {
	var (
		insufficient *invoice.InsufficientStockError
		increase     *invoice.QuantityIncreaseOnEditError
		exceeds      *invoice.ExceedsStockError
		remaining    *invoice.ExceedsRemainingBalanceError
		minimum      *invoice.BelowMinimumAmountError
		incomplete   *invoice.IncompleteInvoiceError
		settlement   *invoice.IncompleteSettlementError
	)
	switch {
	case errors.As(err, &insufficient):
		return insufficient.Lines
	case errors.As(err, &increase):
		return increase.Increases
	case errors.As(err, &exceeds):
		return []invoice.StockFinding{{
			ItemLabel: exceeds.ItemLabel,
			Requested: exceeds.Requested,
			Available: &exceeds.Available,
			Condition: invoice.StockInsufficient,
		}}
	case errors.As(err, &remaining):
		return amountDetails{Amount: remaining.Amount, Remaining: remaining.Remaining}
	case errors.As(err, &minimum):
		return minimumDetails{Minimum: minimum.Minimum, Total: minimum.Total}
	case errors.As(err, &incomplete):
		return missingDetails{Missing: incomplete.Missing}
	case errors.As(err, &settlement):
		return missingDetails{Missing: settlement.Missing}
	}
	return nil
}
