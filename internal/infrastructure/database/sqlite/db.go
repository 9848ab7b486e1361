package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"loan-ledger/internal/config"
	"loan-ledger/internal/pkg/apperrors"

	"github.com/mattn/go-sqlite3"
)

const busyTimeout = 5 * time.Second

var errMsgFormat = "%w: %w"

// Open connects to the database file at cfg.Path. Every transaction starts
// with BEGIN IMMEDIATE, so a writer takes the database lock before it reads.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is empty in configuration")
	}

	logger.Info("Opening SQLite database...", "path", cfg.Path)
	db, err := sql.Open("sqlite3", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		logger.Error("Failed to ping database", "error", err)
		return nil, fmt.Errorf("failed to ping database on open: %w", err)
	}

	logger.Info("SQLite database ready", "path", cfg.Path)
	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	q.Set("_busy_timeout", fmt.Sprint(busyTimeout.Milliseconds()))
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

func rollback(tx *sql.Tx, logger *slog.Logger) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Error("Failed to rollback transaction", slog.Any("error", err))
	}
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			contextLogger.Warn("Database unique constraint violation", "error", sqliteErr.Error())
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, sqliteErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			contextLogger.Warn("Database foreign key violation", "error", sqliteErr.Error())
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, sqliteErr.Error())
		}

		contextLogger.Error("SQLite specific error", "code", int(sqliteErr.Code), "extended", int(sqliteErr.ExtendedCode), "error", sqliteErr.Error())
		return fmt.Errorf("%w: sqlite error %s", apperrors.ErrDatabase, sqliteErr.Code.Error())
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}
