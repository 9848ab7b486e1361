package loan

import (
	"fmt"
	"time"

	"loan-ledger/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeEMI     PaymentType = "EMI"
	PaymentTypeLumpSum PaymentType = "LUMP_SUM"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeEMI || t == PaymentTypeLumpSum
}

// Loan is fixed at origination. TotalAmount is the ceiling every payment is
// checked against and MonthlyEMI is the nominal installment; neither changes
// after creation.
type Loan struct {
	ID              string
	CustomerID      string
	PrincipalAmount decimal.Decimal
	TotalAmount     decimal.Decimal
	InterestRate    decimal.Decimal
	TermYears       int
	MonthlyEMI      decimal.Decimal
	CreatedAt       time.Time
}

type Payment struct {
	ID     string
	LoanID string
	Amount decimal.Decimal
	Type   PaymentType
	PaidAt time.Time
}

// Summary is a loan together with its aggregated payment history, as read
// by the overview and batch queries.
type Summary struct {
	Loan       Loan
	AmountPaid decimal.Decimal
	EMIsPaid   int
}

func NewLoan(customerID string, principal decimal.Decimal, termYears int, interestRate decimal.Decimal, now time.Time) (*Loan, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", apperrors.ErrInvalidArgument)
	}

	orig, err := ComputeOrigination(principal, termYears, interestRate)
	if err != nil {
		return nil, err
	}

	return &Loan{
		ID:              uuid.NewString(),
		CustomerID:      customerID,
		PrincipalAmount: principal,
		TotalAmount:     orig.TotalPayable,
		InterestRate:    interestRate,
		TermYears:       termYears,
		MonthlyEMI:      orig.MonthlyEMI,
		CreatedAt:       now,
	}, nil
}

func NewPayment(loanID string, amount decimal.Decimal, paymentType PaymentType, now time.Time) Payment {
	return Payment{
		ID:     uuid.NewString(),
		LoanID: loanID,
		Amount: amount,
		Type:   paymentType,
		PaidAt: now,
	}
}

func (l *Loan) TermMonths() int {
	return l.TermYears * monthsPerYear
}

func (l *Loan) TotalInterest() decimal.Decimal {
	return l.TotalAmount.Sub(l.PrincipalAmount)
}

// Position derives the current figures of the loan from what has been paid
// so far.
func (l *Loan) Position(amountPaid decimal.Decimal, emisPaid int) Position {
	balance := l.TotalAmount.Sub(amountPaid)
	adjusted := ComputeAdjustedEMI(l.TotalAmount, amountPaid, l.TermMonths(), emisPaid, l.MonthlyEMI)

	monthsLeft := l.TermMonths() - emisPaid
	if monthsLeft < 0 {
		monthsLeft = 0
	}

	return Position{
		AmountPaid:  amountPaid,
		EMIsPaid:    emisPaid,
		Balance:     balance,
		MonthsLeft:  monthsLeft,
		AdjustedEMI: adjusted,
		EMIsLeft:    ComputeEMIsLeft(balance, adjusted),
	}
}

func (s Summary) Position() Position {
	return s.Loan.Position(s.AmountPaid, s.EMIsPaid)
}

// Closed reports whether cumulative payments have reached the total payable.
func (p Position) Closed() bool {
	return !p.Balance.IsPositive()
}

// SummarizePayments returns the amount paid and the number of EMI-type
// payments in a ledger.
func SummarizePayments(payments []Payment) (decimal.Decimal, int) {
	paid := decimal.Zero
	emis := 0
	for _, p := range payments {
		paid = paid.Add(p.Amount)
		if p.Type == PaymentTypeEMI {
			emis++
		}
	}
	return paid, emis
}
