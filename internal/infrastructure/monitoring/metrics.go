package monitoring

import (
	"errors"
	"time"

	"loan-ledger/internal/pkg/apperrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	LoansCreatedTotal   prometheus.Counter
	PaymentsTotal       *prometheus.CounterVec
	PaymentAmountTotal  *prometheus.CounterVec
	OutstandingAmount   prometheus.Gauge
	PortfolioLoans      *prometheus.GaugeVec
	SnapshotLastSuccess prometheus.Gauge
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_ledger_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		LoansCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_ledger_loans_created_total",
				Help: "Total number of loans originated.",
			},
		),
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_ledger_payments_total",
				Help: "Total number of payment attempts by type and outcome.",
			},
			[]string{"payment_type", "status"},
		),
		PaymentAmountTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_ledger_payment_amount_total",
				Help: "Sum of accepted payment amounts by type.",
			},
			[]string{"payment_type"},
		),
		OutstandingAmount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "loan_ledger_portfolio_outstanding_amount",
				Help: "Outstanding balance across all loans at the last portfolio snapshot.",
			},
		),
		PortfolioLoans: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loan_ledger_portfolio_loans",
				Help: "Number of loans by state at the last portfolio snapshot.",
			},
			[]string{"state"},
		),
		SnapshotLastSuccess: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "loan_ledger_portfolio_snapshot_last_success_timestamp_seconds",
				Help: "Unix time of the last successful portfolio snapshot.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

// ObserveQuery is meant to be deferred at the top of a repository method:
//
//	defer monitoring.ObserveQuery("GetLoanByID", time.Now(), &err)
//
// Only storage failures count as errors; a missing row or a rejected
// payment is still a successful query.
func ObserveQuery(queryName string, start time.Time, errp *error) {
	status := "success"
	if errp != nil && errors.Is(*errp, apperrors.ErrDatabase) {
		status = "error"
	}
	RecordDBQuery(queryName, status, time.Since(start))
}

func RecordLoanCreated() {
	Business.LoansCreatedTotal.Inc()
}

func RecordPayment(paymentType, status string) {
	Business.PaymentsTotal.WithLabelValues(paymentType, status).Inc()
}

func RecordPaymentAmount(paymentType string, amount float64) {
	Business.PaymentAmountTotal.WithLabelValues(paymentType).Add(amount)
}

func RecordPortfolioSnapshot(outstanding float64, open, closed int, at time.Time) {
	Business.OutstandingAmount.Set(outstanding)
	Business.PortfolioLoans.WithLabelValues("open").Set(float64(open))
	Business.PortfolioLoans.WithLabelValues("closed").Set(float64(closed))
	Business.SnapshotLastSuccess.Set(float64(at.Unix()))
}
