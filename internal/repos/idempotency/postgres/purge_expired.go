package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/fastprodman/creditledger/internal/infra/pgutils"
)

func (r *idempotencyRepo) PurgeExpired(ctx context.Context, q pgutils.Querier, now time.Time) (int64, error) {
	res, err := q.ExecContext(ctx, `
		DELETE FROM idempotency_keys
		WHERE expires_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("purge idempotency keys: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return n, nil
}
