package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
)

func (r *accountsRepo) Insert(ctx context.Context, tx *sql.Tx, acc credit.Account) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_accounts (
			id, tenant_id, business_customer_id, credit_limit, used_credit,
			version, last_entry_id, frozen, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, acc.ID, acc.TenantID, acc.BusinessCustomerID, acc.CreditLimit, acc.UsedCredit,
		acc.Version, acc.LastEntryID, acc.Frozen, acc.CreatedAt, acc.UpdatedAt)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return fmt.Errorf("%w: tenant %d customer %d", credit.ErrAccountExists, acc.TenantID, acc.BusinessCustomerID)
		}

		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}
