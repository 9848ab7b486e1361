package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/infrastructure/monitoring"
	"loan-ledger/internal/pkg/apperrors"
)

const (
	selectCustomerSQL = `
        SELECT id, name, created_at
        FROM customers
        WHERE id = ?`

	selectAllCustomersSQL = `
        SELECT id, name, created_at
        FROM customers
        ORDER BY id ASC`

	seedCustomerSQL = `
        INSERT OR IGNORE INTO customers (id, name, created_at)
        VALUES (?, ?, ?)`
)

type CustomerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db *sql.DB, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("sql.DB cannot be nil for CustomerRepository")
	}
	return &CustomerRepository{db: db, logger: logger.With("component", "SQLiteCustomerRepository")}
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID string) (_ *customer.Customer, err error) {
	defer monitoring.ObserveQuery("FindCustomerByID", time.Now(), &err)

	var cust customer.Customer
	err = r.db.QueryRowContext(ctx, selectCustomerSQL, customerID).Scan(&cust.ID, &cust.Name, &cust.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.String("customerID", customerID))
			err = customer.ErrNotFound
			return nil, err
		}
		r.logger.ErrorContext(ctx, "Failed to find customer", slog.String("customerID", customerID), slog.Any("error", err))
		err = fmt.Errorf("%w: failed to find customer: %w", apperrors.ErrDatabase, err)
		return nil, err
	}
	return &cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) (_ []*customer.Customer, err error) {
	defer monitoring.ObserveQuery("FindAllCustomers", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, selectAllCustomersSQL)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		err = fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
		return nil, err
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		var cust customer.Customer
		if err = rows.Scan(&cust.ID, &cust.Name, &cust.CreatedAt); err != nil {
			err = fmt.Errorf("%w: failed to scan customer: %w", apperrors.ErrDatabase, err)
			return nil, err
		}
		customers = append(customers, &cust)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("%w: failed to iterate customers: %w", apperrors.ErrDatabase, err)
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) Seed(ctx context.Context, customers []*customer.Customer) (err error) {
	defer monitoring.ObserveQuery("SeedCustomers", time.Now(), &err)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrDatabase, err)
		return err
	}
	defer rollback(tx, r.logger)

	inserted := int64(0)
	for _, cust := range customers {
		res, execErr := tx.ExecContext(ctx, seedCustomerSQL, cust.ID, cust.Name, cust.CreatedAt.UTC())
		if execErr != nil {
			r.logger.ErrorContext(ctx, "Failed to seed customer", slog.String("customerID", cust.ID), slog.Any("error", execErr))
			err = translateDBError(execErr, r.logger)
			return err
		}
		if n, raErr := res.RowsAffected(); raErr == nil {
			inserted += n
		}
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("%w: failed to commit transaction: %w", apperrors.ErrDatabase, err)
		return err
	}

	r.logger.InfoContext(ctx, "Customers seeded", slog.Int("requested", len(customers)), slog.Int64("inserted", inserted))
	return nil
}
