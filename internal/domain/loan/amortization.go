package loan

import (
	"fmt"

	"loan-ledger/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const (
	monthsPerYear = 12

	// emisLeftPlaces bounds the precision of balance/EMI before taking the
	// ceiling, so that balance / (balance / n) counts exactly n installments.
	emisLeftPlaces = 6
)

var (
	hundred = decimal.NewFromInt(100)

	// EMITolerance is the largest accepted gap between an EMI payment and the
	// currently due adjusted EMI (one currency minor unit).
	EMITolerance = decimal.New(1, -2)
)

type Origination struct {
	TotalInterest decimal.Decimal
	TotalPayable  decimal.Decimal
	MonthlyEMI    decimal.Decimal
}

// Position holds the figures derived from a loan and its payments. None of
// them are stored.
type Position struct {
	AmountPaid  decimal.Decimal
	EMIsPaid    int
	Balance     decimal.Decimal
	MonthsLeft  int
	AdjustedEMI decimal.Decimal
	EMIsLeft    int
}

// ComputeOrigination applies simple interest over the whole term and spreads
// the total payable evenly across the term's months.
func ComputeOrigination(principal decimal.Decimal, years int, yearlyRatePercent decimal.Decimal) (Origination, error) {
	if !principal.IsPositive() {
		return Origination{}, fmt.Errorf("%w: principal must be positive", apperrors.ErrInvalidArgument)
	}
	if years <= 0 {
		return Origination{}, fmt.Errorf("%w: loan period must be a positive number of years", apperrors.ErrInvalidArgument)
	}
	if !yearlyRatePercent.IsPositive() {
		return Origination{}, fmt.Errorf("%w: interest rate must be positive", apperrors.ErrInvalidArgument)
	}

	y := decimal.NewFromInt(int64(years))
	totalInterest := principal.Mul(y).Mul(yearlyRatePercent.Div(hundred))
	totalPayable := principal.Add(totalInterest)
	monthlyEMI := totalPayable.Div(decimal.NewFromInt(int64(years * monthsPerYear)))

	return Origination{
		TotalInterest: totalInterest,
		TotalPayable:  totalPayable,
		MonthlyEMI:    monthlyEMI,
	}, nil
}

// ComputeAdjustedEMI keeps the term fixed and lets the EMI float: the
// outstanding balance is spread over the months not yet covered by EMI
// payments. Once the term is exhausted or nothing is owed it falls back to
// the nominal EMI; callers must then rely on EMIs left being zero.
func ComputeAdjustedEMI(totalPayable, amountPaid decimal.Decimal, termMonths, emisPaid int, nominalEMI decimal.Decimal) decimal.Decimal {
	monthsLeft := termMonths - emisPaid
	balance := totalPayable.Sub(amountPaid)

	if monthsLeft > 0 && balance.IsPositive() {
		return balance.Div(decimal.NewFromInt(int64(monthsLeft)))
	}
	return nominalEMI
}

func ComputeEMIsLeft(balance, adjustedEMI decimal.Decimal) int {
	if !balance.IsPositive() {
		return 0
	}
	if !adjustedEMI.IsPositive() {
		return 0
	}
	n := int(balance.Div(adjustedEMI).Round(emisLeftPlaces).Ceil().IntPart())
	// A positive balance always needs at least one more installment.
	if n < 1 {
		n = 1
	}
	return n
}
