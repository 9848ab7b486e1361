package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/event"
	"loan-ledger/internal/infrastructure/monitoring"
	"loan-ledger/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

type LoanService interface {
	CreateLoan(ctx context.Context, customerID string, principal decimal.Decimal, termYears int, yearlyRatePercent decimal.Decimal) (*Loan, error)

	RecordPayment(ctx context.Context, loanID string, amount decimal.Decimal, paymentType PaymentType) (*PaymentOutcome, error)

	GetLedger(ctx context.Context, loanID string) (*Ledger, error)

	GetCustomerOverview(ctx context.Context, customerID string) (*CustomerOverview, error)
}

// Ledger is a loan with its ordered payment history and the figures derived
// from it at read time.
type Ledger struct {
	Loan         Loan
	Position     Position
	Transactions []Payment
}

type CustomerOverview struct {
	Customer customer.Customer
	Loans    []Summary
}

type loanServiceImpl struct {
	repo            Repository
	customerService customer.CustomerService
	publisher       event.EventPublisher
	logger          *slog.Logger
	now             func() time.Time
}

func NewLoanService(r Repository, cs customer.CustomerService, pub event.EventPublisher, logger *slog.Logger) LoanService {
	if r == nil || cs == nil || pub == nil || logger == nil {
		panic("loan service dependencies cannot be nil")
	}
	return &loanServiceImpl{
		repo:            r,
		customerService: cs,
		publisher:       pub,
		logger:          logger.With(slog.String("component", "loanService")),
		now:             time.Now,
	}
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, customerID string, principal decimal.Decimal, termYears int, yearlyRatePercent decimal.Decimal) (*Loan, error) {
	logCtx := s.logger.With(slog.String("customerID", customerID))
	logCtx.InfoContext(ctx, "Creating new loan")

	if _, err := s.customerService.GetCustomer(ctx, customerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Customer not found", slog.Any("error", err))
			return nil, apperrors.NewValidationError("customer_id", fmt.Sprintf("customer %s not found", customerID))
		}
		logCtx.ErrorContext(ctx, "Failed to get customer details from customer service", slog.Any("error", err))
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	l, err := NewLoan(customerID, principal, termYears, yearlyRatePercent, s.now().UTC())
	if err != nil {
		logCtx.WarnContext(ctx, "Rejected loan terms", slog.Any("error", err))
		return nil, err
	}

	created, err := s.repo.CreateLoan(ctx, l)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to save loan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	monitoring.RecordLoanCreated()
	logCtx.InfoContext(ctx, "Loan created successfully",
		slog.String("loanID", created.ID),
		slog.String("totalAmount", created.TotalAmount.StringFixed(2)),
		slog.String("monthlyEMI", created.MonthlyEMI.StringFixed(2)),
	)

	s.publishLoanCreated(ctx, created)
	return created, nil
}

func (s *loanServiceImpl) RecordPayment(ctx context.Context, loanID string, amount decimal.Decimal, paymentType PaymentType) (outcome *PaymentOutcome, err error) {
	logCtx := s.logger.With(slog.String("loanID", loanID), slog.String("paymentType", string(paymentType)))
	logCtx.InfoContext(ctx, "Recording payment", slog.String("amount", amount.String()))

	defer func() {
		status := "success"
		if err != nil {
			status = strings.ToLower(apperrors.Code(err))
		}
		monitoring.RecordPayment(paymentTypeLabel(paymentType), status)
	}()

	if err = ValidatePaymentRequest(amount, paymentType); err != nil {
		logCtx.WarnContext(ctx, "Rejected payment request", slog.Any("error", err))
		return nil, err
	}

	var result PaymentOutcome
	_, err = s.repo.AppendPayment(ctx, loanID, func(l *Loan, prior []Payment) (*Payment, error) {
		if checkErr := CheckPayment(l, prior, amount, paymentType); checkErr != nil {
			return nil, checkErr
		}
		p := NewPayment(l.ID, amount, paymentType, s.now().UTC())
		result = Settle(l, prior, p)
		return &p, nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDatabase) {
			logCtx.ErrorContext(ctx, "Failed to record payment", slog.Any("error", err))
		} else {
			logCtx.WarnContext(ctx, "Payment rejected", slog.Any("error", err))
		}
		return nil, err
	}

	monitoring.RecordPaymentAmount(string(paymentType), amount.InexactFloat64())
	logCtx.InfoContext(ctx, "Payment recorded successfully",
		slog.String("paymentID", result.Payment.ID),
		slog.String("remainingBalance", result.RemainingBalance.StringFixed(2)),
		slog.Int("emisLeft", result.EMIsLeft),
	)

	s.publishPaymentRecorded(ctx, result)
	return &result, nil
}

func (s *loanServiceImpl) GetLedger(ctx context.Context, loanID string) (*Ledger, error) {
	logCtx := s.logger.With(slog.String("loanID", loanID))
	logCtx.DebugContext(ctx, "Getting loan ledger")

	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Loan not found")
		} else {
			logCtx.ErrorContext(ctx, "Failed to get loan", slog.Any("error", err))
		}
		return nil, err
	}

	payments, err := s.repo.GetPaymentsByLoanID(ctx, loanID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to get loan payments", slog.Any("error", err))
		return nil, err
	}

	paid, emisPaid := SummarizePayments(payments)
	return &Ledger{
		Loan:         *l,
		Position:     l.Position(paid, emisPaid),
		Transactions: payments,
	}, nil
}

func (s *loanServiceImpl) GetCustomerOverview(ctx context.Context, customerID string) (*CustomerOverview, error) {
	logCtx := s.logger.With(slog.String("customerID", customerID))
	logCtx.DebugContext(ctx, "Getting customer overview")

	cust, err := s.customerService.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.repo.ListLoanSummariesByCustomer(ctx, cust.ID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to list customer loans", slog.Any("error", err))
		return nil, err
	}

	return &CustomerOverview{
		Customer: *cust,
		Loans:    summaries,
	}, nil
}

func (s *loanServiceImpl) publishLoanCreated(ctx context.Context, l *Loan) {
	err := s.publisher.PublishLoanCreated(ctx, event.LoanCreatedEvent{
		LoanID:          l.ID,
		CustomerID:      l.CustomerID,
		PrincipalAmount: l.PrincipalAmount,
		TotalAmount:     l.TotalAmount,
		InterestRate:    l.InterestRate,
		LoanPeriodYears: l.TermYears,
		MonthlyEMI:      l.MonthlyEMI,
		Timestamp:       l.CreatedAt,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish loan created event", slog.String("loanID", l.ID), slog.Any("error", err))
	}
}

func (s *loanServiceImpl) publishPaymentRecorded(ctx context.Context, o PaymentOutcome) {
	err := s.publisher.PublishPaymentRecorded(ctx, event.PaymentRecordedEvent{
		PaymentID:        o.Payment.ID,
		LoanID:           o.Payment.LoanID,
		Amount:           o.Payment.Amount,
		PaymentType:      string(o.Payment.Type),
		RemainingBalance: o.RemainingBalance,
		EMIsLeft:         o.EMIsLeft,
		Closed:           !o.RemainingBalance.IsPositive(),
		Timestamp:        o.Payment.PaidAt,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish payment recorded event", slog.String("paymentID", o.Payment.ID), slog.Any("error", err))
	}
}

// paymentTypeLabel keeps arbitrary client input out of metric labels.
func paymentTypeLabel(t PaymentType) string {
	if t.Valid() {
		return string(t)
	}
	return "UNKNOWN"
}
