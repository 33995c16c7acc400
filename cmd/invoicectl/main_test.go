package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

func writeJSON(t *testing.T, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func cliDraft(itemID uuid.UUID, qty, price string) map[string]any {
	return map[string]any{
		"client_id": uuid.New().String(),
		"status":    invoice.StatusPending,
		"lines": []map[string]any{{
			"item_id":    itemID.String(),
			"item_name":  "Widget",
			"quantity":   qty,
			"unit_price": price,
		}},
		"discount":          "0",
		"initial_payment":   "0",
		"deduct_from_stock": true,
	}
}

func TestEvaluate_Approved(t *testing.T) {
	itemID := uuid.New()
	draft := writeJSON(t, "draft.json", cliDraft(itemID, "2", "1250.5"))
	stock := writeJSON(t, "stock.json", map[string]any{
		itemID.String(): map[string]string{"available": "50", "min_stock": "1"},
	})

	out, err := runCLI(t, "evaluate", draft, "--stock", stock)

	require.NoError(t, err)
	assert.Contains(t, out, "Outcome:   APPROVED")
	assert.Contains(t, out, "USD 2,501.00")
}

func TestEvaluate_UnverifiableStockNeedsConfirmation(t *testing.T) {
	itemID := uuid.New()
	draft := writeJSON(t, "draft.json", cliDraft(itemID, "2", "20"))

	out, err := runCLI(t, "evaluate", draft, "-o", "json")
	require.NoError(t, err)

	var result EvaluationOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, invoice.OutcomeNeedsConfirmation, result.Outcome)
	require.Len(t, result.Prompts, 1)
	assert.Equal(t, invoice.PromptStockUnverifiable, result.Prompts[0].Kind)

	out, err = runCLI(t, "evaluate", draft, "-o", "json", "--ack", result.Prompts[0].Key)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, invoice.OutcomeApproved, result.Outcome)
	assert.Len(t, result.Acknowledged, 1)
}

func TestEvaluate_BlockedExitsWithError(t *testing.T) {
	itemID := uuid.New()
	draft := writeJSON(t, "draft.json", cliDraft(itemID, "1", "5"))

	out, err := runCLI(t, "evaluate", draft, "--minimum-amount", "25")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errBlocked))
	assert.Contains(t, out, invoice.CodeBelowMinimumAmount)
}

func TestEvaluate_WithBaseline(t *testing.T) {
	itemID := uuid.New()
	invoiceID := uuid.New()
	body := cliDraft(itemID, "2", "20")
	body["invoice_id"] = invoiceID.String()
	body["deduct_from_stock"] = false
	draft := writeJSON(t, "draft.json", body)
	baseline := writeJSON(t, "baseline.json", map[string]any{
		"invoice_id": invoiceID.String(),
		"status":     invoice.StatusPending,
		"lines": []map[string]any{{
			"item_id":    itemID.String(),
			"label":      "Widget",
			"quantity":   "1",
			"unit_price": "20",
		}},
	})

	out, err := runCLI(t, "evaluate", draft, "--baseline", baseline)

	require.Error(t, err)
	assert.Contains(t, out, invoice.CodeQuantityIncreaseOnEdit)
}

func TestEvaluate_InvalidInput(t *testing.T) {
	_, err := runCLI(t, "evaluate", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	draft := writeJSON(t, "draft.json", cliDraft(uuid.New(), "1", "20"))
	_, err = runCLI(t, "evaluate", draft, "-o", "yaml")
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = runCLI(t, "evaluate", draft, "--minimum-amount", "ten")
	assert.ErrorContains(t, err, "--minimum-amount")
}

// settleJSON mirrors the settle-check JSON output
type settleJSON struct {
	Accepted bool       `json:"accepted"`
	Code     string     `json:"code"`
	Amount   moneyJSON  `json:"amount"`
	Left     *moneyJSON `json:"left"`
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func TestSettleCheck(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		accepted bool
		code     string
		left     string
	}{
		{name: "cash within balance", args: []string{"--amount", "40", "--remaining", "60"}, accepted: true, left: "20.00"},
		{name: "exact balance", args: []string{"--amount", "60", "--remaining", "60"}, accepted: true, left: "0.00"},
		{name: "above balance", args: []string{"--amount", "60.01", "--remaining", "60"}, code: invoice.CodeExceedsRemainingBalance},
		{name: "zero amount", args: []string{"--amount", "0", "--remaining", "60"}, code: invoice.CodeNonPositiveAmount},
		{name: "card without digits", args: []string{"--amount", "10", "--remaining", "60", "--method", "card"}, code: invoice.CodeIncompleteSettlement},
		{name: "card with digits", args: []string{"--amount", "10", "--remaining", "60", "--method", "CARD", "--card-last4", "4242"}, accepted: true, left: "50.00"},
		{name: "paid invoice", args: []string{"--amount", "5", "--remaining", "0", "--status", "PAID"}, code: invoice.CodeInvoiceNotSettleable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, append([]string{"settle-check", "-o", "json"}, tt.args...)...)

			var result settleJSON
			require.NoError(t, json.Unmarshal([]byte(out), &result))
			assert.Equal(t, tt.accepted, result.Accepted)
			assert.Equal(t, tt.code, result.Code)
			if tt.accepted {
				assert.NoError(t, err)
				require.NotNil(t, result.Left)
				assert.Equal(t, tt.left, result.Left.Amount)
			} else {
				assert.True(t, errors.Is(err, errSettlementRejected))
				assert.Nil(t, result.Left)
			}
		})
	}
}

func TestSettleCheck_TextOutput(t *testing.T) {
	out, err := runCLI(t, "settle-check", "--amount", "1000", "--remaining", "1500.5")

	require.NoError(t, err)
	assert.Contains(t, out, "USD 1,500.50")
	assert.Contains(t, out, "accepted, USD 500.50 left")

	out, err = runCLI(t, "settle-check", "--amount", "1500.5", "--remaining", "1500.5")
	require.NoError(t, err)
	assert.Contains(t, out, "settled in full")
}

func TestSettleCheck_Currency(t *testing.T) {
	out, err := runCLI(t, "settle-check", "--amount", "12.5", "--remaining", "20", "--currency", "EUR", "-o", "json")
	require.NoError(t, err)

	var result settleJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, moneyJSON{Amount: "12.50", Currency: "EUR"}, result.Amount)
	assert.Equal(t, &moneyJSON{Amount: "7.50", Currency: "EUR"}, result.Left)
}

func TestSettleCheck_InvalidFlags(t *testing.T) {
	_, err := runCLI(t, "settle-check", "--remaining", "10")
	assert.Error(t, err)

	_, err = runCLI(t, "settle-check", "--amount", "1", "--remaining", "10", "--status", "ARCHIVED")
	assert.ErrorContains(t, err, "invalid --status")

	_, err = runCLI(t, "settle-check", "--amount", "1", "--remaining", "10", "--date", "yesterday")
	assert.ErrorContains(t, err, "invalid --date")
}
