package invoice

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateStockAdjustment(t *testing.T) {
	policy := DefaultPolicy()
	base := StockAdjustment{
		ItemID:      uuid.New(),
		ItemLabel:   "Flour",
		Current:     level("100", "10"),
		NewQuantity: decimal.NewFromInt(90),
		Reason:      "recount",
	}

	t.Run("small change approved", func(t *testing.T) {
		assert.True(t, EvaluateStockAdjustment(base, policy, nil).IsApproved())
	})

	t.Run("reason required", func(t *testing.T) {
		adj := base
		adj.Reason = "  "
		out := EvaluateStockAdjustment(adj, policy, nil)
		assert.Equal(t, CodeInvalidAdjustment, out.Code())
	})

	t.Run("negative target blocked", func(t *testing.T) {
		adj := base
		adj.NewQuantity = decimal.NewFromInt(-1)
		assert.True(t, EvaluateStockAdjustment(adj, policy, nil).IsBlocked())
	})

	t.Run("no-op blocked", func(t *testing.T) {
		adj := base
		adj.NewQuantity = decimal.NewFromInt(100)
		assert.True(t, EvaluateStockAdjustment(adj, policy, nil).IsBlocked())
	})

	t.Run("large change and low stock need confirmation", func(t *testing.T) {
		adj := base
		adj.NewQuantity = decimal.NewFromInt(5)
		out := EvaluateStockAdjustment(adj, policy, nil)
		require.True(t, out.NeedsConfirmation())
		assert.Equal(t, []PromptKind{PromptStockWarning, PromptLargeAdjustment}, promptKinds(out.Prompts))

		acked := EvaluateStockAdjustment(adj, policy, NewAcknowledgements(promptKeys(out.Prompts)...))
		assert.True(t, acked.IsApproved())
	})

	t.Run("low stock warning speaks of the adjustment", func(t *testing.T) {
		adj := base
		adj.NewQuantity = decimal.NewFromInt(8)
		adj.Current = level("9", "10")
		out := EvaluateStockAdjustment(adj, policy, nil)
		require.Len(t, out.Prompts, 1)
		assert.Equal(t, PromptStockWarning, out.Prompts[0].Kind)
		assert.Equal(t, "This adjustment leaves Flour at 8, at or below its minimum of 10. Continue?", out.Prompts[0].Message)
		assert.NotContains(t, out.Prompts[0].Message, "sale")
	})

	t.Run("emptying the stock", func(t *testing.T) {
		adj := base
		adj.NewQuantity = decimal.Zero
		out := EvaluateStockAdjustment(adj, policy, nil)
		require.True(t, out.NeedsConfirmation())
		assert.Equal(t, "This adjustment leaves Flour out of stock. Continue?", out.Prompts[0].Message)
	})

	t.Run("payload trims reason", func(t *testing.T) {
		adj := base
		adj.Reason = " damaged "
		assert.Equal(t, "damaged", adj.Payload().Reason)
	})
}
