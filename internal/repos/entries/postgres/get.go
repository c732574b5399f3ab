package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/repos/entries"
	"github.com/google/uuid"
)

func (r *entriesRepo) Get(ctx context.Context, q pgutils.Querier, accountID uuid.UUID, id int64) (credit.Entry, error) {
	e, err := scanEntry(q.QueryRowContext(ctx, `SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE account_id = $1 AND id = $2
	`, accountID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return credit.Entry{}, fmt.Errorf("%w: %d", entries.ErrEntryNotFound, id)
		}

		return credit.Entry{}, fmt.Errorf("get entry: %w", err)
	}

	return e, nil
}
