package limitrequests

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
)

func (r *limitRequestsRepo) Decide(ctx context.Context, tx *sql.Tx, req credit.LimitRequest) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE credit_limit_requests
		SET status = $2,
		    approved_amount = $3,
		    previous_limit = $4,
		    new_limit = $5,
		    admin_notes = $6,
		    decided_by = $7,
		    decided_at = $8
		WHERE id = $1
		  AND status = 'pending'
	`, req.ID, string(req.Status), req.ApprovedAmount, req.PreviousLimit, req.NewLimit,
		req.AdminNotes, req.DecidedBy, nullTime(req.DecidedAt))
	if err != nil {
		return fmt.Errorf("decide limit request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", credit.ErrLimitRequestDecided, req.ID)
	}

	return nil
}
