package limitrequests

import (
	"context"
	"fmt"
	"strings"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/repos/limitrequests"
	"github.com/google/uuid"
)

func (r *limitRequestsRepo) List(ctx context.Context, q pgutils.Querier, f limitrequests.Filter) ([]credit.LimitRequest, error) {
	var (
		where = []string{"tenant_id = $1"}
		args  = []any{f.TenantID}
	)

	arg := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		arg("status = $%d", string(f.Status))
	}

	if f.AccountID != uuid.Nil {
		arg("account_id = $%d", f.AccountID)
	}

	query := `SELECT ` + requestColumns + `
		FROM credit_limit_requests
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id`

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
		return nil, fmt.Errorf("list limit requests: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	var out []credit.LimitRequest

	for rows.Next() {
		req, err := scanRequest(rows, uuid.Nil)
		if err != nil {
			return nil, err
		}

		out = append(out, req)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate limit requests: %w", err)
	}

	return out, nil
}
