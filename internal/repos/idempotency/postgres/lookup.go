package idempotency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fastprodman/creditledger/internal/repos/idempotency"
	"github.com/google/uuid"
)

func (r *idempotencyRepo) Lookup(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, key string, now time.Time) (idempotency.Record, bool, error) {
	var rec idempotency.Record

	err := tx.QueryRowContext(ctx, `
		SELECT account_id, key, entry_id, fingerprint, created_at, expires_at
		FROM idempotency_keys
		WHERE account_id = $1 AND key = $2
	`, accountID, key).Scan(
		&rec.AccountID, &rec.Key, &rec.EntryID, &rec.Fingerprint, &rec.CreatedAt, &rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return idempotency.Record{}, false, nil
		}

		return idempotency.Record{}, false, fmt.Errorf("lookup idempotency key: %w", err)
	}

	if rec.Expired(now) {
		return idempotency.Record{}, false, nil
	}

	return rec, true, nil
}
