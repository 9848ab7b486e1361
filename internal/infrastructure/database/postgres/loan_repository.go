package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/infrastructure/monitoring"
	"loan-ledger/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const (
	loanColumns = `id, customer_id, principal_amount, total_amount, interest_rate, loan_period_years, monthly_emi, created_at`

	insertLoanSQL = `
        INSERT INTO loans (id, customer_id, principal_amount, total_amount, interest_rate, loan_period_years, monthly_emi, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectLoanSQL = `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE id = $1`

	selectLoanForUpdateSQL = selectLoanSQL + `
        FOR UPDATE`

	selectPaymentsSQL = `
        SELECT id, loan_id, amount, payment_type, paid_at
        FROM payments
        WHERE loan_id = $1
        ORDER BY paid_at ASC, id ASC`

	insertPaymentSQL = `
        INSERT INTO payments (id, loan_id, amount, payment_type, paid_at)
        VALUES ($1, $2, $3, $4, $5)`

	selectSummariesSQL = `
        SELECT l.id, l.customer_id, l.principal_amount, l.total_amount, l.interest_rate, l.loan_period_years, l.monthly_emi, l.created_at,
               COALESCE(SUM(p.amount), 0) AS amount_paid,
               COUNT(p.id) FILTER (WHERE p.payment_type = 'EMI') AS emis_paid
        FROM loans l
        LEFT JOIN payments p ON p.loan_id = l.id`

	groupSummariesSQL = `
        GROUP BY l.id
        ORDER BY l.created_at ASC, l.id ASC`

	selectSummariesByCustomerSQL = selectSummariesSQL + `
        WHERE l.customer_id = $1` + groupSummariesSQL

	selectAllSummariesSQL = selectSummariesSQL + groupSummariesSQL
)

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (_ *loan.Loan, err error) {
	defer monitoring.ObserveQuery("CreateLoan", time.Now(), &err)

	_, err = r.db.Exec(ctx, insertLoanSQL,
		newLoan.ID, newLoan.CustomerID, newLoan.PrincipalAmount, newLoan.TotalAmount,
		newLoan.InterestRate, newLoan.TermYears, newLoan.MonthlyEMI, newLoan.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "loan_id", newLoan.ID, "error", err)
		return nil, translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", newLoan.ID, "customer_id", newLoan.CustomerID)
	created := *newLoan
	return &created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID string) (_ *loan.Loan, err error) {
	defer monitoring.ObserveQuery("GetLoanByID", time.Now(), &err)

	l, err := scanLoan(r.db.QueryRow(ctx, selectLoanSQL, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loanID)
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) GetPaymentsByLoanID(ctx context.Context, loanID string) (_ []loan.Payment, err error) {
	defer monitoring.ObserveQuery("GetPaymentsByLoanID", time.Now(), &err)

	payments, err := r.queryPayments(ctx, r.db, loanID)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *LoanRepository) ListLoanSummariesByCustomer(ctx context.Context, customerID string) (_ []loan.Summary, err error) {
	defer monitoring.ObserveQuery("ListLoanSummariesByCustomer", time.Now(), &err)
	return r.querySummaries(ctx, selectSummariesByCustomerSQL, customerID)
}

func (r *LoanRepository) ListAllLoanSummaries(ctx context.Context) (_ []loan.Summary, err error) {
	defer monitoring.ObserveQuery("ListAllLoanSummaries", time.Now(), &err)
	return r.querySummaries(ctx, selectAllSummariesSQL)
}

// AppendPayment locks the loan row for the lifetime of the transaction, so
// concurrent payments against the same loan see each other's writes.
func (r *LoanRepository) AppendPayment(ctx context.Context, loanID string, check loan.PaymentCheck) (_ *loan.Payment, err error) {
	defer monitoring.ObserveQuery("AppendPayment", time.Now(), &err)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rollback(ctx, tx, r.logger)

	l, err := scanLoan(tx.QueryRow(ctx, selectLoanForUpdateSQL, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loanID)
		}
		r.logger.ErrorContext(ctx, "Failed to find/lock loan", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	prior, err := r.queryPayments(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}

	p, err := check(l, prior)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, insertPaymentSQL, p.ID, p.LoanID, p.Amount, string(p.Type), p.PaidAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert payment", "loan_id", loanID, "error", err)
		return nil, translateDBError(err, r.logger)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Payment appended in DB", "loan_id", loanID, "payment_id", p.ID)
	return p, nil
}

func (r *LoanRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) queryPayments(ctx context.Context, q querier, loanID string) ([]loan.Payment, error) {
	rows, err := q.Query(ctx, selectPaymentsSQL, loanID)
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

func (r *LoanRepository) querySummaries(ctx context.Context, query string, args ...any) ([]loan.Summary, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loan summaries", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	summaries := make([]loan.Summary, 0)
	for rows.Next() {
		var (
			s        loan.Summary
			emisPaid int64
		)
		err := rows.Scan(
			&s.Loan.ID, &s.Loan.CustomerID, &s.Loan.PrincipalAmount, &s.Loan.TotalAmount,
			&s.Loan.InterestRate, &s.Loan.TermYears, &s.Loan.MonthlyEMI, &s.Loan.CreatedAt,
			&s.AmountPaid, &emisPaid,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan summary row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		s.EMIsPaid = int(emisPaid)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan summary rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return summaries, nil
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.CustomerID, &l.PrincipalAmount, &l.TotalAmount,
		&l.InterestRate, &l.TermYears, &l.MonthlyEMI, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
