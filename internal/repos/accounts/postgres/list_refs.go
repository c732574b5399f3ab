package accounts

import (
	"context"
	"fmt"

	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/repos/accounts"
	"github.com/google/uuid"
)

func (r *accountsRepo) ListRefs(ctx context.Context, q pgutils.Querier, after uuid.UUID, limit int) ([]accounts.Ref, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, tenant_id
		FROM credit_accounts
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	refs := make([]accounts.Ref, 0, limit)

	for rows.Next() {
		var ref accounts.Ref

		err = rows.Scan(&ref.ID, &ref.TenantID)
		if err != nil {
			return nil, fmt.Errorf("scan account ref: %w", err)
		}

		refs = append(refs, ref)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return refs, nil
}
