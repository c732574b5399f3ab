package reconciliation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
)

// Verify replays the account's entries up to its current fence in a single
// read-only snapshot. It takes no locks.
func (s *Service) Verify(ctx context.Context, tenantID uint64, accountID uuid.UUID) (DriftReport, error) {
	var report DriftReport

	err := pgutils.WithSnapshot(ctx, s.db, func(tx *sql.Tx) error {
		acc, err := s.accounts.Get(ctx, tx, accountID)
		if err != nil {
			return err
		}

		err = acc.CheckTenant(tenantID)
		if err != nil {
			return err
		}

		es, err := s.entries.ListUpTo(ctx, tx, acc.ID, acc.LastEntryID)
		if err != nil {
			return err
		}

		res := credit.Replay(es)

		if res.LastEntryID != acc.LastEntryID && res.FirstDivergingEntryID == 0 {
			// The fence points past the last stored entry.
			res.FirstDivergingEntryID = res.LastEntryID + 1
		}

		report = DriftReport{
			TenantID:              tenantID,
			AccountID:             acc.ID,
			Stored:                acc.UsedCredit,
			Computed:              res.Computed,
			FirstDivergingEntryID: res.FirstDivergingEntryID,
			Fence:                 acc.LastEntryID,
			Entries:               res.Entries,
		}
		report.Consistent = report.FirstDivergingEntryID == 0 && report.Stored.Equal(report.Computed)

		return nil
	})
	if err != nil {
		return DriftReport{}, fmt.Errorf("verify: %w", err)
	}

	return report, nil
}
