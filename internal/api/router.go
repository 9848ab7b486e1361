package api

import (
	"log/slog"
	"net/http"
	"time"

	"loan-ledger/internal/api/handler"
	mw "loan-ledger/internal/api/middleware"
	"loan-ledger/internal/config"
	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/domain/loan"

	_ "loan-ledger/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const (
	apiPrefix      = "/api/v1"
	requestTimeout = 60 * time.Second
)

// Services bundles what the router needs from the domain and storage layers.
type Services struct {
	Loans     loan.LoanService
	Customers customer.CustomerService
	Store     handler.Pinger
}

func SetupRouter(svc Services, rateLimiter *mw.RateLimiterMiddleware, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, rateLimiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupSwaggerEndpoint(router, logger)

	health := handler.NewHealthHandler(svc.Store, logger)
	router.Get("/health", health.Health)

	router.Route(apiPrefix, func(r chi.Router) {
		r.Get("/health", health.Health)
		setupAuthRoutes(r, cfg, logger)
		setupLoanRoutes(r, svc.Loans, cfg, logger)
		setupCustomerRoutes(r, svc.Customers, svc.Loans, cfg, logger)
	})

	return router
}

func setupMiddleware(router *chi.Mux, rateLimiter *mw.RateLimiterMiddleware, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(mw.SecurityHeaders)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(requestTimeout))
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(r chi.Router, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)
	r.Post("/auth/token", authHandler.GenerateBearerToken)
}

func setupLoanRoutes(r chi.Router, loanService loan.LoanService, cfg *config.Config, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(loanService, logger)

	r.Route("/loans", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", loanHandler.CreateLoan)
		r.Post("/{loanID}/payments", loanHandler.RecordPayment)
		r.Get("/{loanID}/ledger", loanHandler.GetLedger)
	})
}

func setupCustomerRoutes(r chi.Router, customerService customer.CustomerService, loanService loan.LoanService, cfg *config.Config, logger *slog.Logger) {
	h := handler.NewCustomerHandler(customerService, loanService, logger)

	r.Route("/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/", h.ListCustomers)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Get("/overview", h.GetOverview)
		})
	})
}
