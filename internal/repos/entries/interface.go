package entries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
)

var ErrEntryNotFound = errors.New("ledger entry not found")

// Filter narrows a history listing. Zero values mean no constraint.
type Filter struct {
	Kind   credit.Kind
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// Entries is the append-only ledger. There is no update or delete.
type Entries interface {
	// Insert appends one entry. A duplicate (account, id) pair fails with
	// credit.ErrConcurrentModification.
	Insert(ctx context.Context, tx *sql.Tx, e credit.Entry) error
	Get(ctx context.Context, q pgutils.Querier, accountID uuid.UUID, id int64) (credit.Entry, error)
	OrderTotals(ctx context.Context, q pgutils.Querier, accountID uuid.UUID, orderID uint64) (credit.OrderTotals, error)
	// ListUpTo returns every entry with id <= fence in id order.
	ListUpTo(ctx context.Context, q pgutils.Querier, accountID uuid.UUID, fence int64) ([]credit.Entry, error)
	// List returns entries matching f, newest first.
	List(ctx context.Context, q pgutils.Querier, accountID uuid.UUID, f Filter) ([]credit.Entry, error)
}
