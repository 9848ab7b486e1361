package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrAlreadyExists = errors.New("resource already exists")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	ErrInvalidAmount = errors.New("invalid payment amount")

	ErrInvalidPaymentType = errors.New("invalid payment type")

	// ErrEMIMismatch is returned when an EMI payment differs from the
	// currently due adjusted EMI by more than the allowed tolerance.
	ErrEMIMismatch = errors.New("emi amount mismatch")

	// ErrOverPayment is returned when a payment would push cumulative
	// payments above the loan's total payable amount.
	ErrOverPayment = errors.New("payment exceeds remaining balance")

	ErrUnauthorized = errors.New("unauthorized")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}

// Code returns a stable machine-readable code for the error kinds surfaced
// to API clients. Unknown errors map to INTERNAL.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidAmount):
		return "INVALID_AMOUNT"
	case errors.Is(err, ErrInvalidPaymentType):
		return "INVALID_PAYMENT_TYPE"
	case errors.Is(err, ErrEMIMismatch):
		return "EMI_MISMATCH"
	case errors.Is(err, ErrOverPayment):
		return "OVER_PAYMENT"
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrValidation):
		return "INVALID_ARGUMENT"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrDatabase):
		return "STORAGE_ERROR"
	default:
		return "INTERNAL"
	}
}
