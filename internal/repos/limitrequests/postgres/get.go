package limitrequests

import (
	"context"
	"database/sql"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
)

func (r *limitRequestsRepo) Get(ctx context.Context, q pgutils.Querier, id uuid.UUID) (credit.LimitRequest, error) {
	row := q.QueryRowContext(ctx, `SELECT `+requestColumns+`
		FROM credit_limit_requests
		WHERE id = $1
	`, id)

	return scanRequest(row, id)
}

// LockForUpdate reads the request and holds its row lock until tx ends.
func (r *limitRequestsRepo) LockForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (credit.LimitRequest, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+requestColumns+`
		FROM credit_limit_requests
		WHERE id = $1
		FOR UPDATE
	`, id)

	return scanRequest(row, id)
}
