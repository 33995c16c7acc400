package invoice

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func level(available, minStock string) StockLevel {
	return StockLevel{
		Available: decimal.RequireFromString(available),
		MinStock:  decimal.RequireFromString(minStock),
	}
}

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		available string
		minStock  string
		want      StockCondition
	}{
		{"more than available", "11", "10", "2", StockInsufficient},
		{"exactly available", "10", "10", "2", StockWillGoOutOfStock},
		{"leaves exactly minimum", "8", "10", "2", StockWillGoLow},
		{"leaves below minimum", "9", "10", "2", StockWillGoLow},
		{"leaves above minimum", "7", "10", "2", StockSufficient},
		{"no minimum configured", "9", "10", "0", StockSufficient},
		{"nothing requested from empty stock", "0", "0", "0", StockWillGoOutOfStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStock(decimal.RequireFromString(tt.requested), level(tt.available, tt.minStock), true)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown item", func(t *testing.T) {
		assert.Equal(t, StockUnverifiable, ClassifyStock(decimal.NewFromInt(1), StockLevel{}, false))
	})
}

func TestStockCondition_Flags(t *testing.T) {
	assert.True(t, StockInsufficient.IsBlocking())
	assert.False(t, StockWillGoLow.IsBlocking())
	assert.True(t, StockWillGoLow.IsWarning())
	assert.True(t, StockWillGoOutOfStock.IsWarning())
	assert.True(t, StockUnverifiable.IsWarning())
	assert.False(t, StockSufficient.IsWarning())
}

func TestStockSnapshot(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	var empty StockSnapshot
	_, ok := empty.Lookup(a)
	assert.False(t, ok)

	s := StockSnapshot{a: level("1", "0")}
	merged := s.Merge(StockSnapshot{a: level("5", "1"), b: level("2", "0")})
	got, ok := merged.Lookup(a)
	assert.True(t, ok)
	assert.True(t, got.Available.Equal(decimal.NewFromInt(5)))
	assert.Len(t, merged, 2)
	assert.True(t, s[a].Available.Equal(decimal.NewFromInt(1)))
}
