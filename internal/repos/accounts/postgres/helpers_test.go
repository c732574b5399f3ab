package accounts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testAccount(tenantID, customerID uint64, limit string) credit.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)

	return credit.Account{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		BusinessCustomerID: customerID,
		CreditLimit:        decimal.RequireFromString(limit),
		UsedCredit:         decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func seedAccount(t *testing.T, db *sql.DB, acc credit.Account) {
	t.Helper()

	err := pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
		return New().Insert(context.Background(), tx, acc)
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
}
