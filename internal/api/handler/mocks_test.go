package handler

import (
	"context"

	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, customerID string, principal decimal.Decimal, termYears int, yearlyRatePercent decimal.Decimal) (*loan.Loan, error) {
	args := m.Called(ctx, customerID, principal, termYears, yearlyRatePercent)
	if created, ok := args.Get(0).(*loan.Loan); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) RecordPayment(ctx context.Context, loanID string, amount decimal.Decimal, paymentType loan.PaymentType) (*loan.PaymentOutcome, error) {
	args := m.Called(ctx, loanID, amount, paymentType)
	if outcome, ok := args.Get(0).(*loan.PaymentOutcome); ok {
		return outcome, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLedger(ctx context.Context, loanID string) (*loan.Ledger, error) {
	args := m.Called(ctx, loanID)
	if ledger, ok := args.Get(0).(*loan.Ledger); ok {
		return ledger, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetCustomerOverview(ctx context.Context, customerID string) (*loan.CustomerOverview, error) {
	args := m.Called(ctx, customerID)
	if overview, ok := args.Get(0).(*loan.CustomerOverview); ok {
		return overview, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID string) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	args := m.Called(ctx)
	if customers, ok := args.Get(0).([]*customer.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) SeedDefaults(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func decimalEq(v string) any {
	want := decimal.RequireFromString(v)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}
