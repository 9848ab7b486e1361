package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Money is stored as TEXT and parsed back into decimals, so no amount ever
// passes through a float.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        created_at DATETIME NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS loans (
        id TEXT PRIMARY KEY,
        customer_id TEXT NOT NULL REFERENCES customers(id),
        principal_amount TEXT NOT NULL,
        total_amount TEXT NOT NULL,
        interest_rate TEXT NOT NULL,
        loan_period_years INTEGER NOT NULL CHECK (loan_period_years > 0),
        monthly_emi TEXT NOT NULL,
        created_at DATETIME NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS payments (
        id TEXT PRIMARY KEY,
        loan_id TEXT NOT NULL REFERENCES loans(id),
        amount TEXT NOT NULL,
        payment_type TEXT NOT NULL CHECK (payment_type IN ('EMI', 'LUMP_SUM')),
        paid_at DATETIME NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_loans_customer_id ON loans(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_loan_id ON payments(loan_id)`,
}

var resetStatements = []string{
	`DELETE FROM payments`,
	`DELETE FROM loans`,
	`DELETE FROM customers`,
}

func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return execAll(ctx, db, schemaStatements, "migrate", logger)
}

func Reset(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return execAll(ctx, db, resetStatements, "reset", logger)
}

func execAll(ctx context.Context, db *sql.DB, statements []string, op string, logger *slog.Logger) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer rollback(tx, logger)

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			logger.ErrorContext(ctx, "Schema statement failed", "op", op, "index", i, "error", err)
			return fmt.Errorf("%s: statement %d failed: %w", op, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit: %w", op, err)
	}
	logger.InfoContext(ctx, "Database schema operation completed", "op", op, "statements", len(statements))
	return nil
}
