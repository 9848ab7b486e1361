package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/infrastructure/monitoring"

	"github.com/shopspring/decimal"
)

// PortfolioSnapshot is the result of one run of PortfolioSnapshotJob.
type PortfolioSnapshot struct {
	Outstanding decimal.Decimal
	OpenLoans   int
	ClosedLoans int
	TakenAt     time.Time
}

// PortfolioSnapshotJob publishes portfolio-wide gauges derived from every
// loan's payment history. It never writes to the store.
type PortfolioSnapshotJob struct {
	loanRepo loan.Repository
	logger   *slog.Logger
	now      func() time.Time
}

func NewPortfolioSnapshotJob(loanRepo loan.Repository, logger *slog.Logger) *PortfolioSnapshotJob {
	if loanRepo == nil || logger == nil {
		panic("PortfolioSnapshotJob dependencies cannot be nil")
	}
	return &PortfolioSnapshotJob{
		loanRepo: loanRepo,
		logger:   logger.With("job", "PortfolioSnapshot"),
		now:      time.Now,
	}
}

func (j *PortfolioSnapshotJob) Run(ctx context.Context) (*PortfolioSnapshot, error) {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting portfolio snapshot job.")

	summaries, err := j.loanRepo.ListAllLoanSummaries(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list loan summaries, aborting job.", slog.Any("error", err))
		return nil, fmt.Errorf("cannot run job, failed to list loans: %w", err)
	}

	snapshot := &PortfolioSnapshot{Outstanding: decimal.Zero, TakenAt: startTime.UTC()}
	for _, s := range summaries {
		pos := s.Position()
		if pos.Closed() {
			snapshot.ClosedLoans++
			continue
		}
		snapshot.OpenLoans++
		snapshot.Outstanding = snapshot.Outstanding.Add(pos.Balance)
	}

	monitoring.RecordPortfolioSnapshot(snapshot.Outstanding.InexactFloat64(), snapshot.OpenLoans, snapshot.ClosedLoans, snapshot.TakenAt)

	j.logger.InfoContext(ctx, "Portfolio snapshot job finished successfully.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("total_loans", len(summaries)),
		slog.Int("open_loans", snapshot.OpenLoans),
		slog.Int("closed_loans", snapshot.ClosedLoans),
		slog.String("outstanding", snapshot.Outstanding.StringFixed(2)),
	)
	return snapshot, nil
}
