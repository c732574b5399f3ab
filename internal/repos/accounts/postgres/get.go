package accounts

import (
	"context"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
)

func (r *accountsRepo) Get(ctx context.Context, q pgutils.Querier, id uuid.UUID) (credit.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+`
		FROM credit_accounts
		WHERE id = $1
	`, id)

	return scanAccount(row, idRef(id))
}

func (r *accountsRepo) FindByCustomer(ctx context.Context, q pgutils.Querier, tenantID, customerID uint64) (credit.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+`
		FROM credit_accounts
		WHERE tenant_id = $1 AND business_customer_id = $2
	`, tenantID, customerID)

	return scanAccount(row, fmt.Sprintf("tenant %d customer %d", tenantID, customerID))
}
