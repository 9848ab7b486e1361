package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const customerNotFound = "Customer not found by repository"

type CustomerService interface {
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	SeedDefaults(ctx context.Context) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	return &customerService{
		repo:   repo,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	logCtx := s.logger.With(slog.String("customerID", customerID))
	logCtx.DebugContext(ctx, "Attempting to get customer by ID")

	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		logCtx.WarnContext(ctx, "Empty customer ID")
		return nil, ErrNotFound
	}

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}

		logCtx.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %s: %w", customerID, err)
	}

	logCtx.DebugContext(ctx, "Successfully retrieved customer")
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*Customer, error) {
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.DebugContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) SeedDefaults(ctx context.Context) error {
	seed := SeedCustomers()
	if err := s.repo.Seed(ctx, seed); err != nil {
		s.logger.ErrorContext(ctx, "Failed to seed customers", slog.Any("error", err))
		return fmt.Errorf("failed to seed customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Seeded default customers", slog.Int("count", len(seed)))
	return nil
}
