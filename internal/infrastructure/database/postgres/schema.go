package postgres

import (
	"context"
	"fmt"
	"log/slog"
)

// Money columns are unconstrained NUMERIC so that derived amounts such as a
// repeating monthly EMI round-trip without loss.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
        id VARCHAR(64) PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS loans (
        id VARCHAR(36) PRIMARY KEY,
        customer_id VARCHAR(64) NOT NULL REFERENCES customers(id),
        principal_amount NUMERIC NOT NULL CHECK (principal_amount > 0),
        total_amount NUMERIC NOT NULL CHECK (total_amount > 0),
        interest_rate NUMERIC NOT NULL CHECK (interest_rate > 0),
        loan_period_years INTEGER NOT NULL CHECK (loan_period_years > 0),
        monthly_emi NUMERIC NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS payments (
        id VARCHAR(36) PRIMARY KEY,
        loan_id VARCHAR(36) NOT NULL REFERENCES loans(id),
        amount NUMERIC NOT NULL CHECK (amount > 0),
        payment_type VARCHAR(16) NOT NULL CHECK (payment_type IN ('EMI', 'LUMP_SUM')),
        paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_loans_customer_id ON loans(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_loan_id_paid_at ON payments(loan_id, paid_at)`,
}

var resetStatements = []string{
	`DELETE FROM payments`,
	`DELETE FROM loans`,
	`DELETE FROM customers`,
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db DBPool, logger *slog.Logger) error {
	return execAll(ctx, db, schemaStatements, "migrate", logger)
}

// Reset removes every row, children first.
func Reset(ctx context.Context, db DBPool, logger *slog.Logger) error {
	return execAll(ctx, db, resetStatements, "reset", logger)
}

func execAll(ctx context.Context, db DBPool, statements []string, op string, logger *slog.Logger) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer rollback(ctx, tx, logger)

	for i, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			logger.ErrorContext(ctx, "Schema statement failed", "op", op, "index", i, "error", err)
			return fmt.Errorf("%s: statement %d failed: %w", op, i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: failed to commit: %w", op, err)
	}
	logger.InfoContext(ctx, "Database schema operation completed", "op", op, "statements", len(statements))
	return nil
}
