// Command creditctl is the operator tool for the credit ledger. It talks to
// Postgres directly through the same services the API uses.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/creditledger/internal/config"
	"github.com/fastprodman/creditledger/internal/infra/logging"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/fastprodman/creditledger/internal/services/reconciliation"
	"github.com/fastprodman/creditledger/pkg/envconf"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type ctlConfig struct {
	LogLevel slog.Level `env:"APP_LOG_LEVEL" default:"WARN"`
	Postgres config.PostgresConfig
	Ledger   config.LedgerConfig
	Recon    config.ReconciliationConfig
}

// app is filled by the root command before any subcommand runs.
var app struct {
	cfg    ctlConfig
	db     *sql.DB
	ledger *ledger.Service
	recon  *reconciliation.Service
}

var tenantID uint64

var rootCmd = &cobra.Command{
	Use:           "creditctl",
	Short:         "Operate the B2B credit ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// A missing .env is fine; the environment wins either way.
		_ = godotenv.Load()

		err := envconf.Load(&app.cfg)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger := logging.SetupJSON(app.cfg.LogLevel, "creditctl")

		app.db, err = pgutils.OpenDB(cmd.Context(), app.cfg.Postgres)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}

		app.ledger = ledger.New(app.db, app.cfg.Ledger, ledger.WithLogger(logger))
		app.recon = reconciliation.New(app.db, app.ledger, reconciliation.WithLogger(logger))

		return nil
	},
	PersistentPostRunE: func(*cobra.Command, []string) error {
		if app.db == nil {
			return nil
		}

		return app.db.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().Uint64VarP(&tenantID, "tenant", "t", 0, "Tenant the account belongs to")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creditctl: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

// requireTenant fails early instead of letting the ledger report a mismatch.
func requireTenant() error {
	if tenantID == 0 {
		return fmt.Errorf("--tenant is required")
	}

	return nil
}
