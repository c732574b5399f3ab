package limitrequests

import (
	"database/sql"
	"testing"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	pgaccounts "github.com/fastprodman/creditledger/internal/repos/accounts/postgres"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedAccount(t *testing.T, db *sql.DB, tenantID, customerID uint64) credit.Account {
	t.Helper()

	acc := credit.Account{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		BusinessCustomerID: customerID,
		CreditLimit:        d("1000"),
		UsedCredit:         decimal.Zero,
		CreatedAt:          baseTime,
		UpdatedAt:          baseTime,
	}

	err := pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
		return pgaccounts.New().Insert(t.Context(), tx, acc)
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	return acc
}

func newRequest(acc credit.Account, amount string, at time.Time) credit.LimitRequest {
	return credit.LimitRequest{
		ID:            uuid.New(),
		TenantID:      acc.TenantID,
		AccountID:     acc.ID,
		Amount:        d(amount),
		Reason:        "peak season",
		Justification: "orders doubled since autumn",
		RequestedBy:   "buyer@acme.gr",
		Status:        credit.RequestPending,
		CreatedAt:     at,
	}
}

func insert(t *testing.T, db *sql.DB, req credit.LimitRequest) error {
	t.Helper()

	return pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
		return New().Insert(t.Context(), tx, req)
	})
}
