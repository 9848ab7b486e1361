package dto

import (
	"time"

	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/domain/loan"
)

type CustomerResponse struct {
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		CustomerID: cust.ID,
		Name:       cust.Name,
		CreatedAt:  cust.CreatedAt,
	}
}

type LoanSummaryResponse struct {
	LoanID        string `json:"loan_id"`
	Principal     Amount `json:"principal" swaggertype:"number"`
	TotalAmount   Amount `json:"total_amount" swaggertype:"number"`
	TotalInterest Amount `json:"total_interest" swaggertype:"number"`
	EMIAmount     Amount `json:"emi_amount" swaggertype:"number"`
	AmountPaid    Amount `json:"amount_paid" swaggertype:"number"`
	EMIsLeft      int    `json:"emis_left"`
}

type CustomerOverviewResponse struct {
	CustomerID   string                `json:"customer_id"`
	CustomerName string                `json:"customer_name"`
	TotalLoans   int                   `json:"total_loans"`
	Loans        []LoanSummaryResponse `json:"loans"`
}

// NewCustomerOverviewResponse computes each loan's figures on its own,
// from that loan's payments only.
func NewCustomerOverviewResponse(o *loan.CustomerOverview) CustomerOverviewResponse {
	loans := make([]LoanSummaryResponse, len(o.Loans))
	for i, s := range o.Loans {
		pos := s.Position()
		loans[i] = LoanSummaryResponse{
			LoanID:        s.Loan.ID,
			Principal:     Amount(s.Loan.PrincipalAmount),
			TotalAmount:   Amount(s.Loan.TotalAmount),
			TotalInterest: Amount(s.Loan.TotalInterest()),
			EMIAmount:     Amount(pos.AdjustedEMI),
			AmountPaid:    Amount(pos.AmountPaid),
			EMIsLeft:      pos.EMIsLeft,
		}
	}

	return CustomerOverviewResponse{
		CustomerID:   o.Customer.ID,
		CustomerName: o.Customer.Name,
		TotalLoans:   len(loans),
		Loans:        loans,
	}
}
