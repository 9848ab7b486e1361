package loan

import (
	"fmt"

	"loan-ledger/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// PaymentOutcome is what the caller learns after a payment is accepted.
type PaymentOutcome struct {
	Payment          Payment
	RemainingBalance decimal.Decimal
	EMIsLeft         int
	NewEMI           decimal.Decimal
}

// ValidatePaymentRequest runs the checks that do not need the loan.
func ValidatePaymentRequest(amount decimal.Decimal, paymentType PaymentType) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrInvalidAmount)
	}
	if !paymentType.Valid() {
		return fmt.Errorf("%w: payment type must be %s or %s", apperrors.ErrInvalidPaymentType, PaymentTypeEMI, PaymentTypeLumpSum)
	}
	return nil
}

// CheckPayment validates a payment against the loan and the payments
// already recorded for it. An EMI must match the currently due adjusted EMI
// within EMITolerance, and no payment may take the cumulative total above
// the loan's total payable amount.
func CheckPayment(l *Loan, prior []Payment, amount decimal.Decimal, paymentType PaymentType) error {
	if err := ValidatePaymentRequest(amount, paymentType); err != nil {
		return err
	}

	paid, emisPaid := SummarizePayments(prior)

	if paymentType == PaymentTypeEMI {
		due := ComputeAdjustedEMI(l.TotalAmount, paid, l.TermMonths(), emisPaid, l.MonthlyEMI)
		if amount.Sub(due).Abs().GreaterThan(EMITolerance) {
			return fmt.Errorf("%w: EMI payment must be exactly %s, got %s",
				apperrors.ErrEMIMismatch, due.StringFixed(2), amount.StringFixed(2))
		}
	}

	if paid.Add(amount).GreaterThan(l.TotalAmount) {
		return fmt.Errorf("%w: cannot pay more than the total payable amount %s (already paid %s)",
			apperrors.ErrOverPayment, l.TotalAmount.StringFixed(2), paid.StringFixed(2))
	}

	return nil
}

// Settle computes the post-payment figures for an accepted payment. The
// EMI count only moves for EMI-type payments, so a lump sum re-spreads the
// smaller balance over the same number of remaining months.
func Settle(l *Loan, prior []Payment, p Payment) PaymentOutcome {
	paid, emisPaid := SummarizePayments(prior)
	paid = paid.Add(p.Amount)
	if p.Type == PaymentTypeEMI {
		emisPaid++
	}

	pos := l.Position(paid, emisPaid)

	remaining := pos.Balance
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return PaymentOutcome{
		Payment:          p,
		RemainingBalance: remaining,
		EMIsLeft:         pos.EMIsLeft,
		NewEMI:           pos.AdjustedEMI,
	}
}
