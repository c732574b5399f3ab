package entries

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

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedAccount(t *testing.T, db *sql.DB) credit.Account {
	t.Helper()

	acc := credit.Account{
		ID:                 uuid.New(),
		TenantID:           1,
		BusinessCustomerID: 77,
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

// chain builds consistent entries for acc from (kind, order, amount) triples,
// one hour apart.
func chain(acc credit.Account, steps ...step) []credit.Entry {
	out := make([]credit.Entry, 0, len(steps))
	used := decimal.Zero

	for i, s := range steps {
		effect := map[credit.Kind]credit.Effect{
			credit.KindHold:    credit.EffectIncrease,
			credit.KindRelease: credit.EffectDecrease,
			credit.KindCharge:  credit.EffectNone,
			credit.KindRefund:  credit.EffectDecrease,
		}[s.kind]

		e := credit.Entry{
			ID:            int64(i + 1),
			AccountID:     acc.ID,
			TenantID:      acc.TenantID,
			Kind:          s.kind,
			Effect:        effect,
			Amount:        d(s.amount),
			BalanceBefore: used,
			OrderID:       s.order,
			CreatedAt:     baseTime.Add(time.Duration(i) * time.Hour),
		}
		e.BalanceAfter = used.Add(e.SignedEffect())
		used = e.BalanceAfter

		out = append(out, e)
	}

	return out
}

type step struct {
	kind   credit.Kind
	order  uint64
	amount string
}

func insertAll(t *testing.T, db *sql.DB, es []credit.Entry) {
	t.Helper()

	err := pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
		for _, e := range es {
			err := New().Insert(t.Context(), tx, e)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		t.Fatalf("insert entries: %v", err)
	}
}
