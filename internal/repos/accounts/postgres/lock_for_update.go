package accounts

import (
	"context"
	"database/sql"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/google/uuid"
)

// LockForUpdate reads the account and holds its row lock until tx ends.
func (r *accountsRepo) LockForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (credit.Account, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+accountColumns+`
		FROM credit_accounts
		WHERE id = $1
		FOR UPDATE
	`, id)

	return scanAccount(row, idRef(id))
}
