package loan

import (
	"context"
)

// PaymentCheck decides, from the locked loan and its prior payments, which
// payment to append. Returning an error aborts the write.
type PaymentCheck func(l *Loan, prior []Payment) (*Payment, error)

type Repository interface {
	CreateLoan(ctx context.Context, l *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID string) (*Loan, error)

	// GetPaymentsByLoanID returns the ledger ordered by payment time, oldest first.
	GetPaymentsByLoanID(ctx context.Context, loanID string) ([]Payment, error)

	ListLoanSummariesByCustomer(ctx context.Context, customerID string) ([]Summary, error)

	ListAllLoanSummaries(ctx context.Context) ([]Summary, error)

	// AppendPayment reads the loan and its payments, runs check and inserts
	// the returned payment as one atomic unit. Concurrent calls for the same
	// loan are serialized. Returns apperrors.ErrNotFound for unknown loans.
	AppendPayment(ctx context.Context, loanID string, check PaymentCheck) (*Payment, error)

	Ping(ctx context.Context) error
}
