package invoice

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// OutcomeKind is the verdict of a guard evaluation
type OutcomeKind string

const (
	OutcomeApproved          OutcomeKind = "APPROVED"
	OutcomeBlocked           OutcomeKind = "BLOCKED"
	OutcomeNeedsConfirmation OutcomeKind = "NEEDS_CONFIRMATION"
)

// PromptKind identifies the kind of confirmation a prompt asks for
type PromptKind string

const (
	PromptPriceChange       PromptKind = "PRICE_CHANGE"
	PromptStockWarning      PromptKind = "STOCK_WARNING"
	PromptStockUnverifiable PromptKind = "STOCK_UNVERIFIABLE"
	PromptLargeAdjustment   PromptKind = "LARGE_ADJUSTMENT"
	PromptStatusChange      PromptKind = "STATUS_CHANGE"
)

// StatusChange describes a status transition on an existing invoice
type StatusChange struct {
	From Status `json:"from"`
	To   Status `json:"to"`
}

// Prompt is a confirmation the user must grant before the save proceeds.
// Key is derived from the prompt content, so an acknowledgement stops
// applying as soon as the underlying facts change.
type Prompt struct {
	Key           string               `json:"key"`
	Kind          PromptKind           `json:"kind"`
	Message       string               `json:"message"`
	PriceChanges  []PriceChange        `json:"price_changes,omitempty"`
	StockFindings []StockFinding       `json:"stock_findings,omitempty"`
	Adjustments   []QuantityAdjustment `json:"adjustments,omitempty"`
	StatusChange  *StatusChange        `json:"status_change,omitempty"`
}

// Acknowledgements is the set of prompt keys the user has confirmed
type Acknowledgements map[string]struct{}

// NewAcknowledgements builds an acknowledgement set from prompt keys
func NewAcknowledgements(keys ...string) Acknowledgements {
	acks := make(Acknowledgements, len(keys))
	for _, k := range keys {
		if k != "" {
			acks[k] = struct{}{}
		}
	}
	return acks
}

// Has reports whether key was acknowledged. Safe on a nil set.
func (a Acknowledgements) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Outcome is the result of a guard evaluation: Approved, Blocked with a
// reason, or NeedsConfirmation with the prompts still awaiting an answer.
type Outcome struct {
	Kind         OutcomeKind
	Reason       error
	Prompts      []Prompt
	Acknowledged []Prompt
	Totals       Totals
}

// Approved builds an approved outcome
func Approved(totals Totals, acknowledged []Prompt) Outcome {
	return Outcome{Kind: OutcomeApproved, Totals: totals, Acknowledged: acknowledged}
}

// Blocked builds a blocked outcome
func Blocked(totals Totals, reason error) Outcome {
	return Outcome{Kind: OutcomeBlocked, Totals: totals, Reason: reason}
}

// NeedsConfirmation builds an outcome waiting on prompts
func NeedsConfirmation(totals Totals, pending, acknowledged []Prompt) Outcome {
	return Outcome{Kind: OutcomeNeedsConfirmation, Totals: totals, Prompts: pending, Acknowledged: acknowledged}
}

// IsApproved reports whether the persist call is licensed
func (o Outcome) IsApproved() bool {
	return o.Kind == OutcomeApproved
}

// IsBlocked reports whether a rule refused the action
func (o Outcome) IsBlocked() bool {
	return o.Kind == OutcomeBlocked
}

// NeedsConfirmation reports whether prompts are pending
func (o Outcome) NeedsConfirmation() bool {
	return o.Kind == OutcomeNeedsConfirmation
}

// Code returns the rule code of a blocked outcome
func (o Outcome) Code() string {
	if o.Reason == nil {
		return ""
	}
	return CodeOf(o.Reason)
}

// resolve splits prompts by acknowledgement and picks the outcome kind
func resolve(totals Totals, prompts []Prompt, acks Acknowledgements) Outcome {
	var pending, acknowledged []Prompt
	for _, p := range prompts {
		if acks.Has(p.Key) {
			acknowledged = append(acknowledged, p)
		} else {
			pending = append(pending, p)
		}
	}
	if len(pending) > 0 {
		return NeedsConfirmation(totals, pending, acknowledged)
	}
	return Approved(totals, acknowledged)
}

// promptKey hashes the kind and the prompt facts into a short stable key
func promptKey(kind PromptKind, facts ...string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, f := range facts {
		h.Write([]byte{0})
		h.Write([]byte(f))
	}
	return strings.ToLower(string(kind)) + ":" + hex.EncodeToString(h.Sum(nil))[:12]
}

func newPriceChangePrompt(changes []PriceChange) Prompt {
	facts := make([]string, 0, len(changes))
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		facts = append(facts, fmt.Sprintf("%s|%s|%s", c.ItemID, c.OriginalPrice.String(), c.NewPrice.String()))
		parts = append(parts, fmt.Sprintf("%s (%s -> %s)", c.ItemLabel, formatAmount(c.OriginalPrice), formatAmount(c.NewPrice)))
	}
	return Prompt{
		Key:          promptKey(PromptPriceChange, facts...),
		Kind:         PromptPriceChange,
		Message:      "Prices changed since the invoice was loaded: " + strings.Join(parts, ", ") + ". Continue?",
		PriceChanges: changes,
	}
}

func newStockWarningPrompt(findings []StockFinding) Prompt {
	facts := make([]string, 0, len(findings))
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		facts = append(facts, fmt.Sprintf("%s|%s|%s|%s", f.ItemID, f.Requested.String(), f.Available.String(), f.Condition))
		left := f.Remaining()
		if f.Condition == StockWillGoOutOfStock {
			parts = append(parts, f.ItemLabel+" will be out of stock")
		} else {
			parts = append(parts, fmt.Sprintf("%s will drop to %s (minimum %s)", f.ItemLabel, left.String(), f.MinStock.String()))
		}
	}
	return Prompt{
		Key:           promptKey(PromptStockWarning, facts...),
		Kind:          PromptStockWarning,
		Message:       "Low stock after this sale: " + strings.Join(parts, "; ") + ". Continue?",
		StockFindings: findings,
	}
}

// newAdjustmentStockPrompt warns that a manual correction leaves an item at
// or below its minimum
func newAdjustmentStockPrompt(f StockFinding) Prompt {
	left := *f.Remaining()
	message := fmt.Sprintf("This adjustment leaves %s at %s, at or below its minimum of %s. Continue?",
		f.ItemLabel, left.String(), f.MinStock.String())
	if f.Condition == StockWillGoOutOfStock {
		message = fmt.Sprintf("This adjustment leaves %s out of stock. Continue?", f.ItemLabel)
	}
	return Prompt{
		Key:           promptKey(PromptStockWarning, "adjustment", f.ItemID.String(), left.String(), string(f.Condition)),
		Kind:          PromptStockWarning,
		Message:       message,
		StockFindings: []StockFinding{f},
	}
}

func newStockUnverifiablePrompt(findings []StockFinding) Prompt {
	facts := make([]string, 0, len(findings))
	labels := make([]string, 0, len(findings))
	for _, f := range findings {
		facts = append(facts, fmt.Sprintf("%s|%s", f.ItemID, f.Requested.String()))
		labels = append(labels, f.ItemLabel)
	}
	return Prompt{
		Key:           promptKey(PromptStockUnverifiable, facts...),
		Kind:          PromptStockUnverifiable,
		Message:       "Stock cannot be verified for: " + strings.Join(labels, ", ") + ". Continue without verification?",
		StockFindings: findings,
	}
}

func newLargeAdjustmentPrompt(adjustments []QuantityAdjustment) Prompt {
	facts := make([]string, 0, len(adjustments))
	parts := make([]string, 0, len(adjustments))
	for _, a := range adjustments {
		facts = append(facts, fmt.Sprintf("%s|%s|%s", a.ItemID, a.Original.String(), a.Requested.String()))
		parts = append(parts, fmt.Sprintf("%s (%s -> %s)", a.ItemLabel, a.Original.String(), a.Requested.String()))
	}
	return Prompt{
		Key:         promptKey(PromptLargeAdjustment, facts...),
		Kind:        PromptLargeAdjustment,
		Message:     "Large quantity adjustment: " + strings.Join(parts, ", ") + ". Continue?",
		Adjustments: adjustments,
	}
}

func newStatusChangePrompt(from, to Status) Prompt {
	return Prompt{
		Key:          promptKey(PromptStatusChange, string(from), string(to)),
		Kind:         PromptStatusChange,
		Message:      fmt.Sprintf("Invoice status will change from %s to %s.", from, to),
		StatusChange: &StatusChange{From: from, To: to},
	}
}
