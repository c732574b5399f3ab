package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
)

func (r *accountsRepo) Update(ctx context.Context, tx *sql.Tx, acc credit.Account, expectedVersion int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE credit_accounts
		SET credit_limit = $3,
		    used_credit = $4,
		    version = $5,
		    last_entry_id = $6,
		    frozen = $7,
		    updated_at = $8
		WHERE id = $1
		  AND version = $2
	`, acc.ID, expectedVersion, acc.CreditLimit, acc.UsedCredit,
		acc.Version, acc.LastEntryID, acc.Frozen, acc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: account %s version %d", credit.ErrConcurrentModification, acc.ID, expectedVersion)
	}

	return nil
}
