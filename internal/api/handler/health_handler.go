package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"loan-ledger/internal/api/handler/dto"
)

const healthCheckTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	logger *slog.Logger
	now    func() time.Time
}

func NewHealthHandler(store Pinger, l *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: l.With("component", "HealthHandler"),
		now:    time.Now,
	}
}

// Health reports whether the service can reach its store.
//
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is healthy"
// @Failure 503 {object} dto.HealthResponse "Store unreachable"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := dto.HealthResponse{Status: "ok", Timestamp: h.now().UTC()}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.logger.ErrorContext(r.Context(), "Health check failed", slog.Any("error", err))
			resp.Status = "unavailable"
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
