package loan

import (
	"testing"

	"loan-ledger/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func TestComputeOrigination(t *testing.T) {
	tests := []struct {
		name          string
		principal     string
		years         int
		rate          string
		wantInterest  string
		wantPayable   string
		wantEMIFixed2 string
	}{
		{"Two year loan at ten percent", "10000", 2, "10", "2000", "12000", "500.00"},
		{"One year loan at five percent", "1000", 1, "5", "50", "1050", "87.50"},
		{"Fractional rate", "100000", 3, "7.5", "22500", "122500", "3402.78"},
		{"Fractional principal", "2500.50", 1, "12", "300.06", "2800.56", "233.38"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig, err := ComputeOrigination(d(tt.principal), tt.years, d(tt.rate))
			require.NoError(t, err)

			assertDecimal(t, tt.wantInterest, orig.TotalInterest)
			assertDecimal(t, tt.wantPayable, orig.TotalPayable)
			assert.Equal(t, tt.wantEMIFixed2, orig.MonthlyEMI.StringFixed(2))
		})
	}

	t.Run("Rejects non-positive inputs", func(t *testing.T) {
		_, err := ComputeOrigination(decimal.Zero, 2, d("10"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

		_, err = ComputeOrigination(d("-1"), 2, d("10"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

		_, err = ComputeOrigination(d("10000"), 0, d("10"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

		_, err = ComputeOrigination(d("10000"), 2, decimal.Zero)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})
}

func TestComputeAdjustedEMI(t *testing.T) {
	nominal := d("500")

	t.Run("Untouched loan pays the nominal EMI", func(t *testing.T) {
		assertDecimal(t, "500", ComputeAdjustedEMI(d("12000"), decimal.Zero, 24, 0, nominal))
	})

	t.Run("Regular EMIs keep the EMI unchanged", func(t *testing.T) {
		assertDecimal(t, "500", ComputeAdjustedEMI(d("12000"), d("500"), 24, 1, nominal))
	})

	t.Run("Lump sum spreads the balance over the remaining months", func(t *testing.T) {
		got := ComputeAdjustedEMI(d("12000"), d("5500"), 24, 1, nominal)
		assert.Equal(t, "282.61", got.StringFixed(2))
	})

	t.Run("Falls back to nominal when nothing is owed", func(t *testing.T) {
		assertDecimal(t, "500", ComputeAdjustedEMI(d("12000"), d("12000"), 24, 10, nominal))
	})

	t.Run("Falls back to nominal when the term is exhausted", func(t *testing.T) {
		assertDecimal(t, "500", ComputeAdjustedEMI(d("12000"), d("11000"), 24, 24, nominal))
	})
}

func TestComputeEMIsLeft(t *testing.T) {
	assert.Equal(t, 24, ComputeEMIsLeft(d("12000"), d("500")))
	assert.Equal(t, 23, ComputeEMIsLeft(d("11500"), d("500")))
	assert.Equal(t, 3, ComputeEMIsLeft(d("1001"), d("500")), "partial installment counts as one")
	assert.Equal(t, 0, ComputeEMIsLeft(decimal.Zero, d("500")))
	assert.Equal(t, 0, ComputeEMIsLeft(d("-5"), d("500")))
	assert.Equal(t, 0, ComputeEMIsLeft(d("100"), decimal.Zero))
	assert.Equal(t, 1, ComputeEMIsLeft(d("0.01"), d("55000")), "a leftover cent is still one installment")

	balance := d("6500")
	adjusted := balance.Div(decimal.NewFromInt(23))
	assert.Equal(t, 23, ComputeEMIsLeft(balance, adjusted), "balance divided by its own even split must not round up")
}

func TestLoanPosition(t *testing.T) {
	l, err := NewLoan("CUST001", d("10000"), 2, d("10"), fixedNow)
	require.NoError(t, err)

	t.Run("Fresh loan", func(t *testing.T) {
		pos := l.Position(decimal.Zero, 0)
		assertDecimal(t, "12000", pos.Balance)
		assertDecimal(t, "500", pos.AdjustedEMI)
		assert.Equal(t, 24, pos.MonthsLeft)
		assert.Equal(t, 24, pos.EMIsLeft)
		assert.False(t, pos.Closed())
	})

	t.Run("After one EMI and a lump sum", func(t *testing.T) {
		pos := l.Position(d("5500"), 1)
		assertDecimal(t, "6500", pos.Balance)
		assert.Equal(t, "282.61", pos.AdjustedEMI.StringFixed(2))
		assert.Equal(t, 23, pos.MonthsLeft)
		assert.Equal(t, 23, pos.EMIsLeft)
	})

	t.Run("Fully paid", func(t *testing.T) {
		pos := l.Position(d("12000"), 24)
		assert.True(t, pos.Closed())
		assert.Equal(t, 0, pos.EMIsLeft)
		assert.Equal(t, 0, pos.MonthsLeft)
		assertDecimal(t, "500", pos.AdjustedEMI)
	})

	t.Run("Months left never negative", func(t *testing.T) {
		pos := l.Position(d("11000"), 30)
		assert.Equal(t, 0, pos.MonthsLeft)
	})
}
