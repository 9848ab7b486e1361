package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// EventPublisher announces ledger changes after they are committed. A
// publish failure never undoes the write it describes.
type EventPublisher interface {
	PublishLoanCreated(ctx context.Context, evt LoanCreatedEvent) error
	PublishPaymentRecorded(ctx context.Context, evt PaymentRecordedEvent) error
}

type LoanCreatedEvent struct {
	LoanID          string          `json:"loanId"`
	CustomerID      string          `json:"customerId"`
	PrincipalAmount decimal.Decimal `json:"principalAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	LoanPeriodYears int             `json:"loanPeriodYears"`
	MonthlyEMI      decimal.Decimal `json:"monthlyEmi"`
	Timestamp       time.Time       `json:"timestamp"`
}

type PaymentRecordedEvent struct {
	PaymentID        string          `json:"paymentId"`
	LoanID           string          `json:"loanId"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentType      string          `json:"paymentType"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	EMIsLeft         int             `json:"emisLeft"`
	Closed           bool            `json:"closed"`
	Timestamp        time.Time       `json:"timestamp"`
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

var _ EventPublisher = (*NoopPublisher)(nil)

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.With("component", "NoopPublisher")}
}

func (p *NoopPublisher) PublishLoanCreated(ctx context.Context, evt LoanCreatedEvent) error {
	p.logger.DebugContext(ctx, "Skipping event publish", "routingKey", RoutingKeyLoanCreated, "loanID", evt.LoanID)
	return nil
}

func (p *NoopPublisher) PublishPaymentRecorded(ctx context.Context, evt PaymentRecordedEvent) error {
	p.logger.DebugContext(ctx, "Skipping event publish", "routingKey", RoutingKeyPaymentRecorded, "loanID", evt.LoanID)
	return nil
}
