package entries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
)

func (r *entriesRepo) Insert(ctx context.Context, tx *sql.Tx, e credit.Entry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, e.AccountID, e.ID, e.TenantID, string(e.Kind), string(e.Effect), e.Amount, e.BalanceBefore, e.BalanceAfter,
		nullOrder(e.OrderID), nullKey(e.IdempotencyKey), e.Reason, e.Reference, e.Correction, e.CreatedBy, e.CreatedAt)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return fmt.Errorf("%w: entry %d of account %s exists", credit.ErrConcurrentModification, e.ID, e.AccountID)
		}

		return fmt.Errorf("insert entry: %w", err)
	}

	return nil
}
