package postgres

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"loan-ledger/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const pgxmockExpectationsNotMetMsg = "pgxmock expectations not met"

func TestTranslateDBError(t *testing.T) {
	assert.NoError(t, translateDBError(nil, logger))
	assert.ErrorIs(t, translateDBError(pgx.ErrNoRows, logger), apperrors.ErrNotFound)

	err := translateDBError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "payments_pkey"}, logger)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "payments_pkey")

	err = translateDBError(&pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "loans_customer_id_fkey"}, logger)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	err = translateDBError(&pgconn.PgError{Code: "40001"}, logger)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.Contains(t, err.Error(), "40001")

	cause := errors.New("connection reset by peer")
	err = translateDBError(cause, logger)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.ErrorIs(t, err, cause)
}
