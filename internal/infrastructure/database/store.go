package database

import (
	"context"
	"fmt"
	"log/slog"

	"loan-ledger/internal/config"
	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/infrastructure/database/postgres"
	"loan-ledger/internal/infrastructure/database/sqlite"
)

// Store is the configured storage backend behind the loan and customer
// repository contracts.
type Store struct {
	Driver    string
	Loans     loan.Repository
	Customers customer.CustomerRepository

	migrate func(context.Context) error
	reset   func(context.Context) error
	close   func()
}

func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewConnectionPool(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:    cfg.Driver,
			Loans:     postgres.NewLoanRepository(pool, logger),
			Customers: postgres.NewCustomerRepository(pool, logger),
			migrate:   func(ctx context.Context) error { return postgres.Migrate(ctx, pool, logger) },
			reset:     func(ctx context.Context) error { return postgres.Reset(ctx, pool, logger) },
			close:     pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:    cfg.Driver,
			Loans:     sqlite.NewLoanRepository(db, logger),
			Customers: sqlite.NewCustomerRepository(db, logger),
			migrate:   func(ctx context.Context) error { return sqlite.Migrate(ctx, db, logger) },
			reset:     func(ctx context.Context) error { return sqlite.Reset(ctx, db, logger) },
			close: func() {
				if err := db.Close(); err != nil {
					logger.Error("Failed to close SQLite database", "error", err)
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

// Reset deletes every payment, loan and customer.
func (s *Store) Reset(ctx context.Context) error {
	return s.reset(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Loans.Ping(ctx)
}

func (s *Store) Close() {
	s.close()
}
