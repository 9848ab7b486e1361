package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"loan-ledger/internal/config"
	"loan-ledger/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommands(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "dbtool.db")}

	countCustomers := func() int {
		store, err := database.Open(ctx, cfg, logger)
		require.NoError(t, err)
		defer store.Close()
		customers, err := store.Customers.FindAll(ctx)
		require.NoError(t, err)
		return len(customers)
	}

	require.NoError(t, run(ctx, "migrate", cfg, logger))
	assert.Equal(t, 0, countCustomers())

	require.NoError(t, run(ctx, "seed", cfg, logger))
	require.NoError(t, run(ctx, "seed", cfg, logger))
	assert.Equal(t, 3, countCustomers())

	require.NoError(t, run(ctx, "reset", cfg, logger))
	assert.Equal(t, 0, countCustomers())
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(context.Background(), "drop", config.DatabaseConfig{Driver: config.DriverSQLite, Path: "unused.db"}, logger)
	assert.ErrorContains(t, err, `unknown command "drop"`)
}
