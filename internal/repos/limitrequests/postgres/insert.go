package limitrequests

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
)

func (r *limitRequestsRepo) Insert(ctx context.Context, tx *sql.Tx, req credit.LimitRequest) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_limit_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, req.ID, req.TenantID, req.AccountID, req.Amount, req.Reason, req.Justification, req.RequestedBy,
		string(req.Status), req.ApprovedAmount, req.PreviousLimit, req.NewLimit, req.AdminNotes, req.DecidedBy,
		req.CreatedAt, nullTime(req.DecidedAt))
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return fmt.Errorf("%w: account %s", credit.ErrLimitRequestPending, req.AccountID)
		}

		return fmt.Errorf("insert limit request: %w", err)
	}

	return nil
}
