package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/creditledger/internal/api"
	"github.com/fastprodman/creditledger/internal/infra/logging"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/fastprodman/creditledger/internal/services/reconciliation"
	"github.com/fastprodman/creditledger/pkg/envconf"
	"github.com/fastprodman/creditledger/pkg/shutdownqueue"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logger := logging.SetupJSON(cfg.LogLevel, "credit-api")

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add("close db", func(context.Context) error {
		return db.Close()
	})

	ledgerSrv := ledger.New(db, cfg.Ledger, ledger.WithLogger(logger))
	reconSrv := reconciliation.New(db, ledgerSrv, reconciliation.WithLogger(logger))

	// --- Reconciliation ---
	if cfg.Recon.Enabled {
		startScheduler(ctx, reconciliation.NewScheduler(reconSrv, cfg.Recon))
	}

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.NewRouter(ledgerSrv, reconSrv))

	shutdownqueue.Add("http server", func(c context.Context) error {
		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", slog.Int("port", int(cfg.Port)))

	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

// startScheduler runs the reconciliation loop until shutdown asks it to stop.
func startScheduler(ctx context.Context, sched *reconciliation.Scheduler) {
	schedCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		err := sched.Run(schedCtx)
		if err != nil {
			slog.Error("reconciliation scheduler stopped", slog.Any("error", err))
		}
	}()

	shutdownqueue.Add("reconciliation scheduler", func(c context.Context) error {
		cancel()

		select {
		case <-done:
			return nil
		case <-c.Done():
			return fmt.Errorf("wait for scheduler: %w", c.Err())
		}
	})
}
