package handler

import (
	"log/slog"
	"net/http"

	"loan-ledger/internal/api/handler/dto"
	"loan-ledger/internal/domain/loan"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

// CreateLoan handles POST /loans
//
// @Summary Create a new loan
// @Description Originates a simple-interest loan for an existing customer. Numeric fields accept JSON numbers or numeric strings.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan terms"
// @Success 201 {object} dto.CreateLoanResponse "Loan created"
// @Failure 400 {object} dto.ErrorResponse "Missing, non-numeric or non-positive field, or unknown customer"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	created, err := h.service.CreateLoan(r.Context(), req.CustomerID, req.LoanAmount.Value, req.TermYears(), req.InterestRateYearly.Value)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan created", slog.String("loanID", created.ID))
	respondJSON(w, http.StatusCreated, dto.NewCreateLoanResponse(created))
}

// RecordPayment handles POST /loans/{loanID}/payments
//
// @Summary Record a payment
// @Description Records an EMI or lump-sum payment. An EMI must equal the currently due adjusted EMI within 0.01, and no payment may take the total paid above the total payable.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path string true "Loan ID"
// @Param request body dto.RecordPaymentRequest true "Payment"
// @Success 200 {object} dto.PaymentResponse "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or type, EMI mismatch, or over-payment"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/payments [post]
// @Security BearerAuth
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathParam(r, "loanID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req dto.RecordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	outcome, err := h.service.RecordPayment(r.Context(), loanID, req.Amount.Value, loan.PaymentType(req.PaymentType))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPaymentResponse(outcome))
}

// GetLedger handles GET /loans/{loanID}/ledger
//
// @Summary Get the loan ledger
// @Description Returns the loan with its current figures and every payment in order. monthly_emi is the adjusted EMI.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.LedgerResponse "Ledger"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/ledger [get]
// @Security BearerAuth
func (h *LoanHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathParam(r, "loanID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	ledger, err := h.service.GetLedger(r.Context(), loanID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLedgerResponse(ledger))
}
