package accounts

import (
	"context"
	"database/sql"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
)

// Ref identifies an account for batch scans.
type Ref struct {
	ID       uuid.UUID
	TenantID uint64
}

// Accounts persists credit account snapshots. Not-found and duplicate cases
// are reported with credit.ErrAccountNotFound and credit.ErrAccountExists.
type Accounts interface {
	Insert(ctx context.Context, tx *sql.Tx, acc credit.Account) error
	Get(ctx context.Context, q pgutils.Querier, id uuid.UUID) (credit.Account, error)
	FindByCustomer(ctx context.Context, q pgutils.Querier, tenantID, customerID uint64) (credit.Account, error)
	LockForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (credit.Account, error)
	// Update writes acc if the stored version still equals expectedVersion,
	// otherwise it fails with credit.ErrConcurrentModification.
	Update(ctx context.Context, tx *sql.Tx, acc credit.Account, expectedVersion int64) error
	// ListRefs pages through accounts ordered by id, starting after the given id.
	ListRefs(ctx context.Context, q pgutils.Querier, after uuid.UUID, limit int) ([]Ref, error)
}
