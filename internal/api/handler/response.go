package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"loan-ledger/internal/api/handler/dto"
	"loan-ledger/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

const internalErrorMessage = "An unexpected error occurred."

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: request body is required", apperrors.ErrInvalidArgument)
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", apperrors.ErrInvalidArgument, err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"code":"INTERNAL","message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// respondError maps the error chain onto a status code and the standard
// error body. Storage and unknown failures are logged and never shown to
// the client.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, message, field := statusFor(err), err.Error(), ""

	var validationError *apperrors.ValidationError
	if errors.As(err, &validationError) {
		message, field = validationError.Message, validationError.Field
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "Request failed", slog.Any("error", err))
		message = internalErrorMessage
	case status == http.StatusNotFound:
		logger.WarnContext(r.Context(), "Resource not found", slog.Any("error", err))
	default:
		logger.WarnContext(r.Context(), "Request rejected", slog.Any("error", err))
	}

	respondJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    apperrors.Code(err),
			Message: message,
			Field:   field,
		},
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidArgument),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrInvalidPaymentType),
		errors.Is(err, apperrors.ErrEMIMismatch),
		errors.Is(err, apperrors.ErrOverPayment):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func pathParam(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		return "", apperrors.NewValidationError(name, name+" is required in the URL path")
	}
	return v, nil
}
