package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/infrastructure/monitoring"
	"loan-ledger/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const (
	selectCustomerSQL = `
        SELECT id, name, created_at
        FROM customers
        WHERE id = $1`

	selectAllCustomersSQL = `
        SELECT id, name, created_at
        FROM customers
        ORDER BY id ASC`

	seedCustomerSQL = `
        INSERT INTO customers (id, name, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO NOTHING`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID string) (_ *customer.Customer, err error) {
	defer monitoring.ObserveQuery("FindCustomerByID", time.Now(), &err)

	var cust customer.Customer
	err = r.db.QueryRow(ctx, selectCustomerSQL, customerID).Scan(&cust.ID, &cust.Name, &cust.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.String("customerID", customerID))
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to find customer", slog.String("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to find customer: %w", apperrors.ErrDatabase, err)
	}

	return &cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) (_ []*customer.Customer, err error) {
	defer monitoring.ObserveQuery("FindAllCustomers", time.Now(), &err)

	rows, err := r.db.Query(ctx, selectAllCustomersSQL)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		var cust customer.Customer
		if err = rows.Scan(&cust.ID, &cust.Name, &cust.CreatedAt); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, &cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to iterate customers: %w", apperrors.ErrDatabase, err)
	}

	return customers, nil
}

func (r *CustomerRepository) Seed(ctx context.Context, customers []*customer.Customer) (err error) {
	defer monitoring.ObserveQuery("SeedCustomers", time.Now(), &err)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrDatabase, err)
	}
	defer rollback(ctx, tx, r.logger)

	inserted := int64(0)
	for _, cust := range customers {
		tag, execErr := tx.Exec(ctx, seedCustomerSQL, cust.ID, cust.Name, cust.CreatedAt)
		if execErr != nil {
			r.logger.ErrorContext(ctx, "Failed to seed customer", slog.String("customerID", cust.ID), slog.Any("error", execErr))
			err = translateDBError(execErr, r.logger)
			return err
		}
		inserted += tag.RowsAffected()
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%w: failed to commit transaction: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customers seeded", slog.Int("requested", len(customers)), slog.Int64("inserted", inserted))
	return nil
}
