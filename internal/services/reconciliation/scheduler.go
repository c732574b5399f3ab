package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/creditledger/internal/config"
	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/logging"
	"github.com/fastprodman/creditledger/internal/infra/metrics"
	"github.com/google/uuid"
)

// Result label values for metrics.ReconciliationRuns.
const (
	resultConsistent = "consistent"
	resultDrift      = "drift"
	resultRepaired   = "repaired"
	resultError      = "error"
)

// Summary describes one pass over every account.
type Summary struct {
	Checked  int
	Drifted  int
	Repaired int
	Failed   int
	Purged   int64
}

// Scheduler runs a reconciliation pass on a fixed interval.
type Scheduler struct {
	svc *Service
	cfg config.ReconciliationConfig
}

func NewScheduler(svc *Service, cfg config.ReconciliationConfig) *Scheduler {
	return &Scheduler{svc: svc, cfg: cfg}
}

// Run passes once immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cfg.Interval <= 0 {
		return fmt.Errorf("reconciliation interval must be positive, got %s", s.cfg.Interval)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		sum, err := s.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			s.svc.log.ErrorContext(ctx, "reconciliation pass failed", slog.Any("error", err))
		} else if err == nil {
			s.svc.log.InfoContext(ctx, "reconciliation pass finished",
				slog.Int("checked", sum.Checked),
				slog.Int("drifted", sum.Drifted),
				slog.Int("repaired", sum.Repaired),
				slog.Int("failed", sum.Failed),
				slog.Int64("purged_keys", sum.Purged),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce verifies every account in batches, repairs drift when configured
// to, and purges expired idempotency keys. Per-account failures are counted,
// not returned.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	var sum Summary

	batch := s.cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}

	after := uuid.Nil

	for {
		refs, err := s.svc.accounts.ListRefs(ctx, s.svc.db, after, batch)
		if err != nil {
			return sum, fmt.Errorf("list accounts: %w", err)
		}

		for _, ref := range refs {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}

			s.check(ctx, ref.TenantID, ref.ID, &sum)
		}

		if len(refs) < batch {
			break
		}

		after = refs[len(refs)-1].ID
	}

	purged, err := s.svc.keys.PurgeExpired(ctx, s.svc.db, s.svc.now().UTC())
	if err != nil {
		return sum, fmt.Errorf("purge idempotency keys: %w", err)
	}

	sum.Purged = purged
	metrics.IdempotencyPurged.Add(float64(purged))

	return sum, nil
}

func (s *Scheduler) check(ctx context.Context, tenantID uint64, accountID uuid.UUID, sum *Summary) {
	sum.Checked++

	report, err := s.svc.Verify(ctx, tenantID, accountID)
	if err != nil {
		s.fail(ctx, tenantID, accountID, sum, err)
		return
	}

	if report.Consistent {
		metrics.ReconciliationRuns.WithLabelValues(resultConsistent).Inc()
		return
	}

	sum.Drifted++
	metrics.IntegrityErrors.WithLabelValues(credit.KindOf(credit.ErrDriftDetected)).Inc()

	s.svc.log.ErrorContext(ctx, "ledger drift detected",
		logging.Account(tenantID, accountID),
		slog.String("stored", report.Stored.String()),
		slog.String("computed", report.Computed.String()),
		slog.Int64("first_diverging_entry_id", report.FirstDivergingEntryID),
		slog.Int64("fence", report.Fence),
	)

	if !s.cfg.AutoRepair {
		metrics.ReconciliationRuns.WithLabelValues(resultDrift).Inc()
		return
	}

	out, err := s.svc.Repair(ctx, tenantID, accountID, s.cfg.Actor)
	if err != nil {
		s.fail(ctx, tenantID, accountID, sum, err)
		return
	}

	if out.Repaired {
		sum.Repaired++
		metrics.ReconciliationRuns.WithLabelValues(resultRepaired).Inc()

		return
	}

	metrics.ReconciliationRuns.WithLabelValues(resultConsistent).Inc()
}

func (s *Scheduler) fail(ctx context.Context, tenantID uint64, accountID uuid.UUID, sum *Summary, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}

	sum.Failed++
	metrics.ReconciliationRuns.WithLabelValues(resultError).Inc()

	s.svc.log.ErrorContext(ctx, "reconciliation failed",
		logging.Account(tenantID, accountID),
		slog.String("error_kind", credit.KindOf(err)),
		slog.Any("error", err),
	)
}
