package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerRowColumns = []string{"id", "name", "created_at"}

func setupCustomerRepo(t *testing.T) (context.Context, *CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	ctx := context.Background()
	repo := NewCustomerRepository(mockPool, logger)

	return ctx, repo, mockPool
}

func TestFindCustomerByIDReturnOne(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery(regexp.QuoteMeta(selectCustomerSQL)).WithArgs("CUST001").
		WillReturnRows(pgxmock.NewRows(customerRowColumns).AddRow("CUST001", "Amit Sharma", createdAt))

	cust, err := repo.FindByID(ctx, "CUST001")
	require.NoError(t, err)
	assert.Equal(t, &customer.Customer{ID: "CUST001", Name: "Amit Sharma", CreatedAt: createdAt}, cust)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindCustomerByIDReturnNone(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(selectCustomerSQL)).WithArgs("CUST999").WillReturnError(pgx.ErrNoRows)

	cust, err := repo.FindByID(ctx, "CUST999")
	assert.Nil(t, cust)
	assert.ErrorIs(t, err, customer.ErrNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindCustomerByIDDatabaseError(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(selectCustomerSQL)).WithArgs("CUST001").WillReturnError(context.DeadlineExceeded)

	_, err := repo.FindByID(ctx, "CUST001")
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFindAllThenGetAllCustomer(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery(regexp.QuoteMeta(selectAllCustomersSQL)).
		WillReturnRows(pgxmock.NewRows(customerRowColumns).
			AddRow("CUST001", "Amit Sharma", createdAt).
			AddRow("CUST002", "Priya Singh", createdAt).
			AddRow("CUST003", "Rahul Verma", createdAt))

	customers, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 3)
	assert.Equal(t, "CUST002", customers[1].ID)
	assert.Equal(t, "Rahul Verma", customers[2].Name)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSeedCustomers(t *testing.T) {
	seed := customer.SeedCustomers()

	t.Run("inserts missing customers", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectBegin()
		for i, cust := range seed {
			affected := int64(1)
			if i == 0 {
				affected = 0
			}
			mockPool.ExpectExec(regexp.QuoteMeta(seedCustomerSQL)).
				WithArgs(cust.ID, cust.Name, cust.CreatedAt).
				WillReturnResult(pgxmock.NewResult("INSERT", affected))
		}
		mockPool.ExpectCommit()

		assert.NoError(t, repo.Seed(ctx, seed))
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectBegin()
		mockPool.ExpectExec(regexp.QuoteMeta(seedCustomerSQL)).WillReturnError(errors.New("disk full"))
		mockPool.ExpectRollback()

		err := repo.Seed(ctx, seed)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})
}

func TestNewCustomerRepositoryPanicsWithoutPool(t *testing.T) {
	assert.Panics(t, func() {
		NewCustomerRepository(nil, logger)
	})
}
