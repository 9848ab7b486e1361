package handler

import (
	"log/slog"
	"net/http"

	"loan-ledger/internal/api/handler/dto"
	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/domain/loan"
)

type CustomerHandler struct {
	customers customer.CustomerService
	loans     loan.LoanService
	logger    *slog.Logger
}

func NewCustomerHandler(cs customer.CustomerService, ls loan.LoanService, l *slog.Logger) *CustomerHandler {
	if cs == nil || ls == nil {
		panic("customer handler services cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		customers: cs,
		loans:     ls,
		logger:    l.With("component", "CustomerHandler"),
	}
}

// ListCustomers handles GET /customers
//
// @Summary List customers
// @Tags Customers
// @Produce json
// @Success 200 {array} dto.CustomerResponse "Customers"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.ListCustomers(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := make([]dto.CustomerResponse, len(customers))
	for i, cust := range customers {
		resp[i] = dto.NewCustomerResponse(cust)
	}
	h.logger.DebugContext(r.Context(), "Customers listed", slog.Int("count", len(resp)))
	respondJSON(w, http.StatusOK, resp)
}

// GetCustomer handles GET /customers/{customerID}
//
// @Summary Get a customer
// @Tags Customers
// @Produce json
// @Param customerID path string true "Customer ID"
// @Success 200 {object} dto.CustomerResponse "Customer"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathParam(r, "customerID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	cust, err := h.customers.GetCustomer(r.Context(), customerID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// GetOverview handles GET /customers/{customerID}/overview
//
// @Summary Get a customer's loan overview
// @Description Lists every loan of the customer with its adjusted EMI, amount paid and EMIs left.
// @Tags Customers
// @Produce json
// @Param customerID path string true "Customer ID"
// @Success 200 {object} dto.CustomerOverviewResponse "Overview"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/overview [get]
// @Security BearerAuth
func (h *CustomerHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathParam(r, "customerID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	overview, err := h.loans.GetCustomerOverview(r.Context(), customerID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerOverviewResponse(overview))
}
