package loan

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) CreateLoan(ctx context.Context, l *Loan) (*Loan, error) {
	args := m.Called(ctx, l)
	if rf, ok := args.Get(0).(func(context.Context, *Loan) *Loan); ok {
		return rf(ctx, l), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Loan), args.Error(1)
}

func (m *MockRepository) GetLoanByID(ctx context.Context, loanID string) (*Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Loan), args.Error(1)
}

func (m *MockRepository) GetPaymentsByLoanID(ctx context.Context, loanID string) ([]Payment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Payment), args.Error(1)
}

func (m *MockRepository) ListLoanSummariesByCustomer(ctx context.Context, customerID string) ([]Summary, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Summary), args.Error(1)
}

func (m *MockRepository) ListAllLoanSummaries(ctx context.Context) ([]Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Summary), args.Error(1)
}

// AppendPayment accepts either (*Payment, error) or a func with the
// method's signature as the first return value.
func (m *MockRepository) AppendPayment(ctx context.Context, loanID string, check PaymentCheck) (*Payment, error) {
	args := m.Called(ctx, loanID, check)
	if rf, ok := args.Get(0).(func(context.Context, string, PaymentCheck) (*Payment, error)); ok {
		return rf(ctx, loanID, check)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// lockedLedger simulates a storage transaction holding the loan and its
// payments; accepted payments are appended to prior.
func lockedLedger(l *Loan, prior *[]Payment) func(context.Context, string, PaymentCheck) (*Payment, error) {
	return func(_ context.Context, _ string, check PaymentCheck) (*Payment, error) {
		snapshot := append([]Payment(nil), (*prior)...)
		p, err := check(l, snapshot)
		if err != nil {
			return nil, err
		}
		*prior = append(*prior, *p)
		return p, nil
	}
}
