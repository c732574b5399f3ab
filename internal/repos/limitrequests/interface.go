package limitrequests

import (
	"context"
	"database/sql"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
)

// Filter narrows a listing to one tenant. Zero Status and AccountID mean any.
type Filter struct {
	TenantID  uint64
	Status    credit.RequestStatus
	AccountID uuid.UUID
	Limit     int
	Offset    int
}

// LimitRequests stores credit increase requests. Missing rows are reported
// with credit.ErrLimitRequestNotFound.
type LimitRequests interface {
	// Insert stores a pending request. A second pending request for the same
	// account fails with credit.ErrLimitRequestPending.
	Insert(ctx context.Context, tx *sql.Tx, r credit.LimitRequest) error
	Get(ctx context.Context, q pgutils.Querier, id uuid.UUID) (credit.LimitRequest, error)
	LockForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (credit.LimitRequest, error)
	// Decide writes the decision fields of r if the stored request is still
	// pending, otherwise it fails with credit.ErrLimitRequestDecided.
	Decide(ctx context.Context, tx *sql.Tx, r credit.LimitRequest) error
	// List returns matching requests, newest first.
	List(ctx context.Context, q pgutils.Querier, f Filter) ([]credit.LimitRequest, error)
}
