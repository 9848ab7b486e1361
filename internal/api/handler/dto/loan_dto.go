package dto

import (
	"strings"
	"time"

	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/pkg/apperrors"
)

const paymentRecordedMessage = "Payment recorded successfully."

type CreateLoanRequest struct {
	CustomerID         string  `json:"customer_id" example:"CUST001"`
	LoanAmount         Numeric `json:"loan_amount" swaggertype:"number" example:"10000"`
	LoanPeriodYears    Numeric `json:"loan_period_years" swaggertype:"integer" example:"2"`
	InterestRateYearly Numeric `json:"interest_rate_yearly" swaggertype:"number" example:"10"`
}

func (r *CreateLoanRequest) Validate() error {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	if r.CustomerID == "" {
		return apperrors.NewValidationError("customer_id", "customer_id is required")
	}
	if err := requirePositive("loan_amount", r.LoanAmount); err != nil {
		return err
	}
	if err := requirePositive("loan_period_years", r.LoanPeriodYears); err != nil {
		return err
	}
	if !r.LoanPeriodYears.Value.IsInteger() || r.LoanPeriodYears.Value.GreaterThan(maxTermYears) {
		return apperrors.NewValidationError("loan_period_years", "loan_period_years must be a whole number of years")
	}
	return requirePositive("interest_rate_yearly", r.InterestRateYearly)
}

// TermYears is only meaningful after Validate has passed.
func (r *CreateLoanRequest) TermYears() int {
	return int(r.LoanPeriodYears.Value.IntPart())
}

var maxTermYears = NewNumeric("100").Value

func requirePositive(field string, n Numeric) error {
	if !n.Set {
		return apperrors.NewValidationError(field, field+" is required")
	}
	if !n.Value.IsPositive() {
		return apperrors.NewValidationError(field, field+" must be positive")
	}
	return nil
}

type CreateLoanResponse struct {
	LoanID             string `json:"loan_id"`
	CustomerID         string `json:"customer_id"`
	TotalAmountPayable Amount `json:"total_amount_payable" swaggertype:"number"`
	MonthlyEMI         Amount `json:"monthly_emi" swaggertype:"number"`
}

func NewCreateLoanResponse(l *loan.Loan) CreateLoanResponse {
	return CreateLoanResponse{
		LoanID:             l.ID,
		CustomerID:         l.CustomerID,
		TotalAmountPayable: Amount(l.TotalAmount),
		MonthlyEMI:         Amount(l.MonthlyEMI),
	}
}

// RecordPaymentRequest leaves amount and type checks to the loan service so
// that every rejection carries the same error codes.
type RecordPaymentRequest struct {
	Amount      Numeric `json:"amount" swaggertype:"number" example:"500"`
	PaymentType string  `json:"payment_type" enums:"EMI,LUMP_SUM" example:"EMI"`
}

func (r *RecordPaymentRequest) Validate() error {
	if !r.Amount.Set {
		return apperrors.NewValidationError("amount", "amount is required")
	}
	if strings.TrimSpace(r.PaymentType) == "" {
		return apperrors.NewValidationError("payment_type", "payment_type is required")
	}
	return nil
}

type PaymentResponse struct {
	PaymentID        string `json:"payment_id"`
	LoanID           string `json:"loan_id"`
	Message          string `json:"message"`
	RemainingBalance Amount `json:"remaining_balance" swaggertype:"number"`
	EMIsLeft         int    `json:"emis_left"`
	NewEMI           Amount `json:"new_emi" swaggertype:"number"`
}

func NewPaymentResponse(o *loan.PaymentOutcome) PaymentResponse {
	return PaymentResponse{
		PaymentID:        o.Payment.ID,
		LoanID:           o.Payment.LoanID,
		Message:          paymentRecordedMessage,
		RemainingBalance: Amount(o.RemainingBalance),
		EMIsLeft:         o.EMIsLeft,
		NewEMI:           Amount(o.NewEMI),
	}
}

type TransactionResponse struct {
	TransactionID string    `json:"transaction_id"`
	Date          time.Time `json:"date"`
	Amount        Amount    `json:"amount" swaggertype:"number"`
	Type          string    `json:"type"`
}

type LedgerResponse struct {
	LoanID         string                `json:"loan_id"`
	CustomerID     string                `json:"customer_id"`
	Principal      Amount                `json:"principal" swaggertype:"number"`
	TotalAmount    Amount                `json:"total_amount" swaggertype:"number"`
	MonthlyEMI     Amount                `json:"monthly_emi" swaggertype:"number"`
	AmountPaid     Amount                `json:"amount_paid" swaggertype:"number"`
	BalanceAmount  Amount                `json:"balance_amount" swaggertype:"number"`
	CurrentBalance Amount                `json:"current_balance" swaggertype:"number"`
	EMIsLeft       int                   `json:"emis_left"`
	Transactions   []TransactionResponse `json:"transactions"`
}

func NewLedgerResponse(l *loan.Ledger) LedgerResponse {
	txs := make([]TransactionResponse, len(l.Transactions))
	for i, p := range l.Transactions {
		txs[i] = TransactionResponse{
			TransactionID: p.ID,
			Date:          p.PaidAt,
			Amount:        Amount(p.Amount),
			Type:          string(p.Type),
		}
	}

	return LedgerResponse{
		LoanID:         l.Loan.ID,
		CustomerID:     l.Loan.CustomerID,
		Principal:      Amount(l.Loan.PrincipalAmount),
		TotalAmount:    Amount(l.Loan.TotalAmount),
		MonthlyEMI:     Amount(l.Position.AdjustedEMI),
		AmountPaid:     Amount(l.Position.AmountPaid),
		BalanceAmount:  Amount(l.Position.Balance),
		CurrentBalance: Amount(l.Position.Balance),
		EMIsLeft:       l.Position.EMIsLeft,
		Transactions:   txs,
	}
}

