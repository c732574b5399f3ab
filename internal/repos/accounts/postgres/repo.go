package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/repos/accounts"
	"github.com/google/uuid"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct{}

func New() *accountsRepo {
	return &accountsRepo{}
}

const accountColumns = `
	id, tenant_id, business_customer_id, credit_limit, used_credit,
	version, last_entry_id, frozen, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, ref any) (credit.Account, error) {
	var acc credit.Account

	err := row.Scan(
		&acc.ID, &acc.TenantID, &acc.BusinessCustomerID, &acc.CreditLimit, &acc.UsedCredit,
		&acc.Version, &acc.LastEntryID, &acc.Frozen, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return credit.Account{}, fmt.Errorf("%w: %v", credit.ErrAccountNotFound, ref)
		}

		return credit.Account{}, fmt.Errorf("scan account: %w", err)
	}

	return acc, nil
}

func idRef(id uuid.UUID) string { return id.String() }
