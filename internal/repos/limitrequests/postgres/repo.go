package limitrequests

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/repos/limitrequests"
	"github.com/google/uuid"
)

var _ limitrequests.LimitRequests = (*limitRequestsRepo)(nil)

type limitRequestsRepo struct{}

func New() *limitRequestsRepo {
	return &limitRequestsRepo{}
}

const requestColumns = `
	id, tenant_id, account_id, amount, reason, justification, requested_by, status,
	approved_amount, previous_limit, new_limit, admin_notes, decided_by, created_at, decided_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner, id uuid.UUID) (credit.LimitRequest, error) {
	var (
		r         credit.LimitRequest
		status    string
		decidedAt sql.NullTime
	)

	err := row.Scan(
		&r.ID, &r.TenantID, &r.AccountID, &r.Amount, &r.Reason, &r.Justification, &r.RequestedBy, &status,
		&r.ApprovedAmount, &r.PreviousLimit, &r.NewLimit, &r.AdminNotes, &r.DecidedBy, &r.CreatedAt, &decidedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return credit.LimitRequest{}, fmt.Errorf("%w: %s", credit.ErrLimitRequestNotFound, id)
		}

		return credit.LimitRequest{}, fmt.Errorf("scan limit request: %w", err)
	}

	r.Status, err = credit.ParseRequestStatus(status)
	if err != nil {
		return credit.LimitRequest{}, fmt.Errorf("limit request %s: %w", r.ID, err)
	}

	if decidedAt.Valid {
		r.DecidedAt = decidedAt.Time
	}

	return r, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
