package idempotency

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/creditledger/internal/repos/idempotency"
)

func (r *idempotencyRepo) Put(ctx context.Context, tx *sql.Tx, rec idempotency.Record) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO idempotency_keys (account_id, key, entry_id, fingerprint, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account_id, key) DO UPDATE
		SET entry_id = EXCLUDED.entry_id,
		    fingerprint = EXCLUDED.fingerprint,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at <= EXCLUDED.created_at
	`, rec.AccountID, rec.Key, rec.EntryID, rec.Fingerprint, rec.CreatedAt, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("put idempotency key: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %q", idempotency.ErrKeyTaken, rec.Key)
	}

	return nil
}
