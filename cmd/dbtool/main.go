// Command dbtool prepares the loan ledger database outside the server.
//
//	dbtool [-config dir] migrate|seed|reset
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"loan-ledger/internal/config"
	"loan-ledger/internal/domain/customer"
	"loan-ledger/internal/infrastructure/database"
	"loan-ledger/internal/infrastructure/logging"
)

const commandTimeout = time.Minute

func main() {
	configDir := flag.String("config", ".", "directory containing config.yml")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config dir] migrate|seed|reset\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := run(ctx, flag.Arg(0), cfg.Database, logger); err != nil {
		logger.Error("dbtool failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, cfg config.DatabaseConfig, logger *slog.Logger) error {
	switch command {
	case "migrate", "seed", "reset":
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	switch command {
	case "migrate":
		err = store.Migrate(ctx)
	case "seed":
		if err = store.Migrate(ctx); err == nil {
			err = customer.NewCustomerService(store.Customers, logger).SeedDefaults(ctx)
		}
	case "reset":
		err = store.Reset(ctx)
	}
	if err != nil {
		return err
	}

	logger.Info("dbtool finished", "command", command, "driver", store.Driver)
	return nil
}
