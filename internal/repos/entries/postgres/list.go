package entries

import (
	"context"
	"fmt"
	"strings"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/repos/entries"
	"github.com/google/uuid"
)

func (r *entriesRepo) ListUpTo(ctx context.Context, q pgutils.Querier, accountID uuid.UUID, fence int64) ([]credit.Entry, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE account_id = $1 AND id <= $2
		ORDER BY id
	`, accountID, fence)
	if err != nil {
		return nil, fmt.Errorf("list entries up to %d: %w", fence, err)
	}

	return scanEntries(rows)
}

func (r *entriesRepo) List(ctx context.Context, q pgutils.Querier, accountID uuid.UUID, f entries.Filter) ([]credit.Entry, error) {
	var (
		where = []string{"account_id = $1"}
		args  = []any{accountID}
	)

	arg := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Kind != "" {
		arg("kind = $%d", string(f.Kind))
	}

	if !f.From.IsZero() {
		arg("created_at >= $%d", f.From)
	}

	if !f.To.IsZero() {
		arg("created_at < $%d", f.To)
	}

	query := `SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id DESC`

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return scanEntries(rows)
}
