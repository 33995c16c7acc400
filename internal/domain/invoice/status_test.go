package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusDept, StatusPaid, StatusDeleted} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Status("DRAFT").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []Status{StatusPending, StatusDept, StatusPaid, StatusDeleted}
	legal := map[Status][]Status{
		StatusPending: {StatusPending, StatusDept, StatusPaid},
		StatusDept:    {StatusDept, StatusPaid},
		StatusPaid:    {StatusPaid},
		StatusDeleted: {},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, l := range legal[from] {
				if l == to {
					want = true
				}
			}
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.Equal(t, want, from.CanTransitionTo(to))
			})
		}
	}
}

func TestStatus_Successors(t *testing.T) {
	assert.Equal(t, []Status{StatusPending, StatusDept, StatusPaid}, StatusPending.Successors())
	assert.Equal(t, []Status{StatusDept, StatusPaid}, StatusDept.Successors())
	assert.Equal(t, []Status{StatusPaid}, StatusPaid.Successors())
	assert.Empty(t, StatusDeleted.Successors())
	assert.True(t, StatusDeleted.IsTerminal())
}

func TestValidateTransition(t *testing.T) {
	t.Run("new invoice accepts any selectable status", func(t *testing.T) {
		for _, s := range []Status{StatusPending, StatusDept, StatusPaid} {
			assert.NoError(t, ValidateTransition(nil, s))
		}
	})

	t.Run("new invoice cannot start deleted", func(t *testing.T) {
		err := ValidateTransition(nil, StatusDeleted)
		var te *StatusTransitionError
		require.ErrorAs(t, err, &te)
		assert.Nil(t, te.From)
	})

	t.Run("existing invoice cannot regress", func(t *testing.T) {
		current := StatusPaid
		err := ValidateTransition(&current, StatusDept)
		var te *StatusTransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, CodeInvalidStatusTransition, te.Code())
		assert.Contains(t, err.Error(), "from PAID to DEPT")
	})

	t.Run("deleted invoice is terminal", func(t *testing.T) {
		current := StatusDeleted
		assert.Error(t, ValidateTransition(&current, StatusPending))
	})

	t.Run("pending to paid is allowed", func(t *testing.T) {
		current := StatusPending
		assert.NoError(t, ValidateTransition(&current, StatusPaid))
	})
}

func TestCheckPayment(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name    string
		status  Status
		payment string
		total   string
		wantErr string
	}{
		{"pending without payment", StatusPending, "0", "50", ""},
		{"pending with partial payment", StatusPending, "20", "50", ""},
		{"overpayment on pending", StatusPending, "50.01", "50", "payment exceeds invoice total"},
		{"overpayment on paid", StatusPaid, "60", "50", "payment exceeds invoice total"},
		{"overpayment on dept", StatusDept, "51", "50", "payment exceeds invoice total"},
		{"dept needs payment", StatusDept, "0", "50", "DEPT requires a positive initial payment"},
		{"dept with payment", StatusDept, "0.01", "50", ""},
		{"paid short", StatusPaid, "40", "50", "PAID requires full payment, expected USD 50.00, got USD 40.00"},
		{"paid exact", StatusPaid, "50", "50", ""},
		{"negative payment", StatusPending, "-1", "50", "cannot be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPayment(tt.status, d(tt.payment), d(tt.total))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var pv *PaymentViolationError
			require.ErrorAs(t, err, &pv)
			assert.Contains(t, pv.Detail, tt.wantErr)
		})
	}
}

func TestAmountsInMessagesAreFormatted(t *testing.T) {
	d := decimal.RequireFromString

	err := CheckPayment(StatusPaid, d("1000"), d("1234.5"))
	assert.EqualError(t, err, "PAID requires full payment, expected USD 1,234.50, got USD 1,000.00")

	assert.Contains(t, (&BelowMinimumAmountError{Minimum: d("10"), Total: d("9.5")}).Error(),
		"invoice total USD 9.50 is below the minimum of USD 10.00")
	assert.Contains(t, (&ExceedsRemainingBalanceError{Amount: d("2500"), Remaining: d("2000.1")}).Error(),
		"settlement amount USD 2,500.00 exceeds the remaining balance of USD 2,000.10")

	p := newPriceChangePrompt([]PriceChange{{ItemLabel: "Drill", OriginalPrice: d("1200"), NewPrice: d("1350.75")}})
	assert.Contains(t, p.Message, "Drill (USD 1,200.00 -> USD 1,350.75)")
}

func TestCheckPayment_OverpaymentAlwaysRejected(t *testing.T) {
	total := decimal.RequireFromString("99.99")
	for _, s := range []Status{StatusPending, StatusDept, StatusPaid} {
		for _, extra := range []string{"0.01", "1", "1000"} {
			err := CheckPayment(s, total.Add(decimal.RequireFromString(extra)), total)
			assert.Error(t, err, "%s +%s", s, extra)
		}
	}
}
