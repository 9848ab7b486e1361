package loan

import (
	"context"

	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/event"

	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, customerID string) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	ret := _m.Called(ctx)

	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) SeedDefaults(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (_m *MockEventPublisher) PublishLoanCreated(ctx context.Context, evt event.LoanCreatedEvent) error {
	return _m.Called(ctx, evt).Error(0)
}

func (_m *MockEventPublisher) PublishPaymentRecorded(ctx context.Context, evt event.PaymentRecordedEvent) error {
	return _m.Called(ctx, evt).Error(0)
}
