package customer

import (
	"context"
	"fmt"

	"loan-ledger/internal/pkg/apperrors"
)

var ErrNotFound = fmt.Errorf("%w: customer", apperrors.ErrNotFound)

type CustomerRepository interface {
	FindByID(ctx context.Context, customerID string) (*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)

	// Seed inserts the given customers, leaving existing ids untouched.
	Seed(ctx context.Context, customers []*Customer) error
}
