package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/logging"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/google/uuid"
)

// Repair brings the snapshot back in line with the replayed history using a
// single correction entry. It does nothing when the snapshot already matches,
// so running it twice without new entries in between writes once at most.
// The correction is written even when the history does not chain; the report
// still carries the first diverging entry. A broken chain whose snapshot
// already equals the replay leaves nothing to adjust and is reported as
// credit.ErrDriftDetected.
func (s *Service) Repair(ctx context.Context, tenantID uint64, accountID uuid.UUID, createdBy string) (RepairResult, error) {
	const attempts = 2

	var err error

	for range attempts {
		var out RepairResult

		out, err = s.repairOnce(ctx, tenantID, accountID, createdBy)
		if errors.Is(err, credit.ErrStaleFence) {
			// New entries landed between verify and adjust; look again.
			continue
		}

		return out, err
	}

	return RepairResult{}, err
}

func (s *Service) repairOnce(ctx context.Context, tenantID uint64, accountID uuid.UUID, createdBy string) (RepairResult, error) {
	report, err := s.Verify(ctx, tenantID, accountID)
	if err != nil {
		return RepairResult{}, err
	}

	out := RepairResult{Report: report}

	if report.Stored.Equal(report.Computed) {
		if report.FirstDivergingEntryID != 0 {
			return out, fmt.Errorf("repair: %w: history breaks at entry %d, snapshot matches replay",
				credit.ErrDriftDetected, report.FirstDivergingEntryID)
		}

		return out, nil
	}

	res, err := s.ledger.Adjustment(ctx, ledger.AdjustmentRequest{
		TenantID:  tenantID,
		AccountID: accountID,
		Delta:     report.Delta(),
		Reason:    credit.ReasonReconciliation,
		CreatedBy: createdBy,
		Fence: &ledger.Fence{
			LastEntryID: report.Fence,
			UsedCredit:  report.Stored,
		},
	})
	if err != nil {
		return out, fmt.Errorf("repair: %w", err)
	}

	out.Repaired = true
	out.Result = res

	s.log.WarnContext(ctx, "ledger drift repaired",
		logging.Account(tenantID, accountID),
		slog.String("stored", report.Stored.String()),
		slog.String("computed", report.Computed.String()),
		slog.Int64("fence", report.Fence),
		slog.Int64("entry_id", res.Entry.ID),
		slog.String("created_by", createdBy),
	)

	return out, nil
}
