package sqlite

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"loan-ledger/internal/config"
	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "ledger.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db, logger))
	require.NoError(t, NewCustomerRepository(db, logger).Seed(ctx, customer.SeedCustomers()))
	return db
}

func createTestLoan(t *testing.T, repo *LoanRepository, customerID string, principal string, years int, rate string, createdAt time.Time) *loan.Loan {
	t.Helper()
	l, err := loan.NewLoan(customerID, decimal.RequireFromString(principal), years, decimal.RequireFromString(rate), createdAt)
	require.NoError(t, err)
	created, err := repo.CreateLoan(context.Background(), l)
	require.NoError(t, err)
	return created
}

func payWith(amount string, paymentType loan.PaymentType, paidAt time.Time) loan.PaymentCheck {
	return func(l *loan.Loan, prior []loan.Payment) (*loan.Payment, error) {
		amt := decimal.RequireFromString(amount)
		if err := loan.CheckPayment(l, prior, amt, paymentType); err != nil {
			return nil, err
		}
		p := loan.NewPayment(l.ID, amt, paymentType, paidAt)
		return &p, nil
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{}, logger)
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, Migrate(context.Background(), db, logger))
}

func TestCustomerRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewCustomerRepository(db, logger)
	ctx := context.Background()

	t.Run("seed is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Seed(ctx, customer.SeedCustomers()))
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"CUST001", "CUST002", "CUST003"}, []string{all[0].ID, all[1].ID, all[2].ID})
	})

	t.Run("find by id", func(t *testing.T) {
		cust, err := repo.FindByID(ctx, "CUST002")
		require.NoError(t, err)
		assert.Equal(t, "Priya Singh", cust.Name)
		assert.False(t, cust.CreatedAt.IsZero())
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "CUST404")
		assert.ErrorIs(t, err, customer.ErrNotFound)
	})
}

func TestLoanRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db, logger)
	ctx := context.Background()
	createdAt := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	created := createTestLoan(t, repo, "CUST001", "2500.50", 1, "12", createdAt)

	fetched, err := repo.GetLoanByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CUST001", fetched.CustomerID)
	assert.True(t, created.TotalAmount.Equal(fetched.TotalAmount), "total %s", fetched.TotalAmount)
	assert.True(t, created.MonthlyEMI.Equal(fetched.MonthlyEMI), "monthly EMI must round-trip exactly, got %s", fetched.MonthlyEMI)
	assert.Equal(t, 1, fetched.TermYears)
	assert.True(t, createdAt.Equal(fetched.CreatedAt))

	_, err = repo.GetLoanByID(ctx, "not-a-loan")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLoanRepository_CreateLoanUnknownCustomer(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db, logger)

	l, err := loan.NewLoan("CUST999", decimal.NewFromInt(1000), 1, decimal.NewFromInt(5), time.Now().UTC())
	require.NoError(t, err)

	_, err = repo.CreateLoan(context.Background(), l)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestLoanRepository_AppendPayment(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db, logger)
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	l := createTestLoan(t, repo, "CUST001", "10000", 2, "10", start)

	_, err := repo.AppendPayment(ctx, l.ID, payWith("500", loan.PaymentTypeEMI, start.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.AppendPayment(ctx, l.ID, payWith("5000", loan.PaymentTypeLumpSum, start.Add(2*time.Hour)))
	require.NoError(t, err)

	t.Run("rejected payment is not stored", func(t *testing.T) {
		_, err := repo.AppendPayment(ctx, l.ID, payWith("500", loan.PaymentTypeEMI, start.Add(3*time.Hour)))
		assert.ErrorIs(t, err, apperrors.ErrEMIMismatch)
	})

	t.Run("unknown loan", func(t *testing.T) {
		_, err := repo.AppendPayment(ctx, "missing", payWith("1", loan.PaymentTypeLumpSum, start))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	payments, err := repo.GetPaymentsByLoanID(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, loan.PaymentTypeEMI, payments[0].Type)
	assert.Equal(t, loan.PaymentTypeLumpSum, payments[1].Type)
	assert.True(t, decimal.NewFromInt(5000).Equal(payments[1].Amount))
	assert.True(t, start.Add(2*time.Hour).Equal(payments[1].PaidAt))
}

func TestLoanRepository_Summaries(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db, logger)
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := createTestLoan(t, repo, "CUST001", "10000", 2, "10", start)
	second := createTestLoan(t, repo, "CUST001", "1000", 1, "5", start.Add(time.Hour))
	createTestLoan(t, repo, "CUST002", "2000", 1, "5", start.Add(2*time.Hour))

	_, err := repo.AppendPayment(ctx, first.ID, payWith("500", loan.PaymentTypeEMI, start.Add(3*time.Hour)))
	require.NoError(t, err)
	_, err = repo.AppendPayment(ctx, first.ID, payWith("0.10", loan.PaymentTypeLumpSum, start.Add(4*time.Hour)))
	require.NoError(t, err)
	_, err = repo.AppendPayment(ctx, first.ID, payWith("0.20", loan.PaymentTypeLumpSum, start.Add(5*time.Hour)))
	require.NoError(t, err)

	summaries, err := repo.ListLoanSummariesByCustomer(ctx, "CUST001")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, first.ID, summaries[0].Loan.ID)
	assert.Equal(t, "500.3", summaries[0].AmountPaid.String())
	assert.Equal(t, 1, summaries[0].EMIsPaid)

	assert.Equal(t, second.ID, summaries[1].Loan.ID)
	assert.True(t, summaries[1].AmountPaid.IsZero())
	assert.Equal(t, 0, summaries[1].EMIsPaid)

	none, err := repo.ListLoanSummariesByCustomer(ctx, "CUST003")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.ListAllLoanSummaries(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLoanRepository_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db, logger)
	ctx := context.Background()

	// 1000 at 5% for a year: 1050 payable.
	l := createTestLoan(t, repo, "CUST003", "1000", 1, "5", time.Now().UTC())

	const attempts = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AppendPayment(ctx, l.ID, payWith("200", loan.PaymentTypeLumpSum, time.Now().UTC()))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrOverPayment)
			rejected++
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, accepted)
	assert.Equal(t, attempts-5, rejected)

	payments, err := repo.GetPaymentsByLoanID(ctx, l.ID)
	require.NoError(t, err)
	paid, _ := loan.SummarizePayments(payments)
	assert.True(t, paid.LessThanOrEqual(l.TotalAmount), "paid %s exceeds total %s", paid, l.TotalAmount)
}

func TestResetClearsData(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewLoanRepository(db, logger)
	createTestLoan(t, repo, "CUST001", "1000", 1, "5", time.Now().UTC())

	require.NoError(t, Reset(ctx, db, logger))

	all, err := repo.ListAllLoanSummaries(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	customers, err := NewCustomerRepository(db, logger).FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestPing(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db, logger)
	assert.NoError(t, repo.Ping(context.Background()))

	db.Close()
	assert.ErrorIs(t, repo.Ping(context.Background()), apperrors.ErrDatabase)
}
