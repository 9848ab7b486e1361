package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/infrastructure/monitoring"
	"loan-ledger/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const (
	loanColumns = `l.id, l.customer_id, l.principal_amount, l.total_amount, l.interest_rate, l.loan_period_years, l.monthly_emi, l.created_at`

	insertLoanSQL = `
        INSERT INTO loans (id, customer_id, principal_amount, total_amount, interest_rate, loan_period_years, monthly_emi, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectLoanSQL = `
        SELECT ` + loanColumns + `
        FROM loans l
        WHERE l.id = ?`

	selectPaymentsSQL = `
        SELECT id, loan_id, amount, payment_type, paid_at
        FROM payments
        WHERE loan_id = ?
        ORDER BY rowid ASC`

	insertPaymentSQL = `
        INSERT INTO payments (id, loan_id, amount, payment_type, paid_at)
        VALUES (?, ?, ?, ?, ?)`

	selectSummaryRowsSQL = `
        SELECT ` + loanColumns + `, p.amount, p.payment_type
        FROM loans l
        LEFT JOIN payments p ON p.loan_id = l.id`

	orderSummaryRowsSQL = `
        ORDER BY l.created_at ASC, l.id ASC, p.rowid ASC`

	selectSummaryRowsByCustomerSQL = selectSummaryRowsSQL + `
        WHERE l.customer_id = ?` + orderSummaryRowsSQL

	selectAllSummaryRowsSQL = selectSummaryRowsSQL + orderSummaryRowsSQL
)

type LoanRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db *sql.DB, logger *slog.Logger) *LoanRepository {
	if db == nil {
		panic("sql.DB cannot be nil for LoanRepository")
	}
	return &LoanRepository{db: db, logger: logger.With("component", "SQLiteLoanRepository")}
}

func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (_ *loan.Loan, err error) {
	defer monitoring.ObserveQuery("CreateLoan", time.Now(), &err)

	_, err = r.db.ExecContext(ctx, insertLoanSQL,
		newLoan.ID, newLoan.CustomerID, newLoan.PrincipalAmount, newLoan.TotalAmount,
		newLoan.InterestRate, newLoan.TermYears, newLoan.MonthlyEMI, newLoan.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "loan_id", newLoan.ID, "error", err)
		err = translateDBError(err, r.logger)
		return nil, err
	}

	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", newLoan.ID, "customer_id", newLoan.CustomerID)
	created := *newLoan
	return &created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID string) (_ *loan.Loan, err error) {
	defer monitoring.ObserveQuery("GetLoanByID", time.Now(), &err)

	l, err := r.getLoan(ctx, r.db, loanID)
	return l, err
}

func (r *LoanRepository) GetPaymentsByLoanID(ctx context.Context, loanID string) (_ []loan.Payment, err error) {
	defer monitoring.ObserveQuery("GetPaymentsByLoanID", time.Now(), &err)

	payments, err := r.queryPayments(ctx, r.db, loanID)
	return payments, err
}

func (r *LoanRepository) ListLoanSummariesByCustomer(ctx context.Context, customerID string) (_ []loan.Summary, err error) {
	defer monitoring.ObserveQuery("ListLoanSummariesByCustomer", time.Now(), &err)

	summaries, err := r.querySummaries(ctx, selectSummaryRowsByCustomerSQL, customerID)
	return summaries, err
}

func (r *LoanRepository) ListAllLoanSummaries(ctx context.Context) (_ []loan.Summary, err error) {
	defer monitoring.ObserveQuery("ListAllLoanSummaries", time.Now(), &err)

	summaries, err := r.querySummaries(ctx, selectAllSummaryRowsSQL)
	return summaries, err
}

// AppendPayment runs the read, the check and the insert inside one
// BEGIN IMMEDIATE transaction, which holds the database write lock until
// commit.
func (r *LoanRepository) AppendPayment(ctx context.Context, loanID string, check loan.PaymentCheck) (_ *loan.Payment, err error) {
	defer monitoring.ObserveQuery("AppendPayment", time.Now(), &err)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		err = fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		return nil, err
	}
	defer rollback(tx, r.logger)

	l, err := r.getLoan(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}

	prior, err := r.queryPayments(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}

	p, err := check(l, prior)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, insertPaymentSQL, p.ID, p.LoanID, p.Amount, string(p.Type), p.PaidAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert payment", "loan_id", loanID, "error", err)
		err = translateDBError(err, r.logger)
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "loan_id", loanID, "error", err)
		err = fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		return nil, err
	}

	r.logger.InfoContext(ctx, "Payment appended in DB", "loan_id", loanID, "payment_id", p.ID)
	return p, nil
}

func (r *LoanRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *LoanRepository) getLoan(ctx context.Context, q querier, loanID string) (*loan.Loan, error) {
	var l loan.Loan
	err := q.QueryRowContext(ctx, selectLoanSQL, loanID).Scan(
		&l.ID, &l.CustomerID, &l.PrincipalAmount, &l.TotalAmount,
		&l.InterestRate, &l.TermYears, &l.MonthlyEMI, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loanID)
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return &l, nil
}

func (r *LoanRepository) queryPayments(ctx context.Context, q querier, loanID string) ([]loan.Payment, error) {
	rows, err := q.QueryContext(ctx, selectPaymentsSQL, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query payments", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	payments := make([]loan.Payment, 0)
	for rows.Next() {
		var (
			p           loan.Payment
			paymentType string
		)
		if err := rows.Scan(&p.ID, &p.LoanID, &p.Amount, &paymentType, &p.PaidAt); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan payment row", "loan_id", loanID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		p.Type = loan.PaymentType(paymentType)
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating payment rows", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return payments, nil
}

// querySummaries folds one row per payment (or one bare row for a loan with
// no payments) into a Summary per loan. Amounts are summed as decimals
// rather than with SQL SUM, which would go through REAL.
func (r *LoanRepository) querySummaries(ctx context.Context, query string, args ...any) ([]loan.Summary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loan summaries", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	summaries := make([]loan.Summary, 0)
	for rows.Next() {
		var (
			l           loan.Loan
			amount      decimal.NullDecimal
			paymentType sql.NullString
		)
		err := rows.Scan(
			&l.ID, &l.CustomerID, &l.PrincipalAmount, &l.TotalAmount,
			&l.InterestRate, &l.TermYears, &l.MonthlyEMI, &l.CreatedAt,
			&amount, &paymentType,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan summary row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}

		if n := len(summaries); n == 0 || summaries[n-1].Loan.ID != l.ID {
			summaries = append(summaries, loan.Summary{Loan: l, AmountPaid: decimal.Zero})
		}
		current := &summaries[len(summaries)-1]
		if amount.Valid {
			current.AmountPaid = current.AmountPaid.Add(amount.Decimal)
			if loan.PaymentType(paymentType.String) == loan.PaymentTypeEMI {
				current.EMIsPaid++
			}
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan summary rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return summaries, nil
}
