package entries

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgtestutil"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/repos/entries"
)

func TestEntries_InsertAndGet(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	acc := seedAccount(t, db)
	es := chain(acc, step{credit.KindHold, 10, "120.50"})
	es[0].IdempotencyKey = "order-10-hold"
	insertAll(t, db, es)

	got, err := New().Get(t.Context(), db, acc.ID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Kind != credit.KindHold || got.Effect != credit.EffectIncrease || got.OrderID != 10 {
		t.Fatalf("entry mismatch: %+v", got)
	}

	if !got.Amount.Equal(d("120.50")) || !got.BalanceAfter.Equal(d("120.50")) {
		t.Fatalf("amounts mismatch: %+v", got)
	}

	if got.IdempotencyKey != "order-10-hold" {
		t.Fatalf("key: want order-10-hold, got %q", got.IdempotencyKey)
	}

	adj := credit.Entry{
		ID:            2,
		AccountID:     acc.ID,
		TenantID:      acc.TenantID,
		Kind:          credit.KindAdjustment,
		Effect:        credit.EffectIncrease,
		Amount:        d("4.50"),
		BalanceBefore: d("120.50"),
		BalanceAfter:  d("125.00"),
		Reason:        "fee",
		Reference:     "INV-9",
		CreatedBy:     "admin",
		CreatedAt:     baseTime.Add(time.Hour),
	}
	insertAll(t, db, []credit.Entry{adj})

	got, err = New().Get(t.Context(), db, acc.ID, 2)
	if err != nil {
		t.Fatalf("get adjustment: %v", err)
	}

	if got.Reference != "INV-9" || got.Reason != "fee" {
		t.Fatalf("reference not stored: %+v", got)
	}

	_, err = New().Get(t.Context(), db, acc.ID, 2)
	if !errors.Is(err, entries.ErrEntryNotFound) {
		t.Fatalf("want ErrEntryNotFound, got %v", err)
	}
}

func TestEntries_InsertRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(e *credit.Entry)
		check  func(err error) bool
	}{
		{
			name:   "duplicate_id",
			mutate: func(e *credit.Entry) {},
			check:  func(err error) bool { return errors.Is(err, credit.ErrConcurrentModification) },
		},
		{
			name: "balance_does_not_match_effect",
			mutate: func(e *credit.Entry) {
				e.ID = 2
				e.BalanceAfter = e.BalanceAfter.Add(d("1"))
			},
			check: func(err error) bool { return pgutils.Code(err) == pgutils.CodeCheckViolation },
		},
		{
			name: "adjustment_with_order",
			mutate: func(e *credit.Entry) {
				e.ID = 2
				e.Kind = credit.KindAdjustment
			},
			check: func(err error) bool { return pgutils.Code(err) == pgutils.CodeCheckViolation },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			acc := seedAccount(t, db)
			es := chain(acc, step{credit.KindHold, 1, "10"})
			insertAll(t, db, es)

			e := es[0]
			tt.mutate(&e)

			err := pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
				return New().Insert(t.Context(), tx, e)
			})
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEntries_AreImmutable(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	acc := seedAccount(t, db)
	insertAll(t, db, chain(acc, step{credit.KindHold, 1, "10"}))

	for _, stmt := range []string{
		`UPDATE ledger_entries SET amount = 1 WHERE account_id = $1`,
		`DELETE FROM ledger_entries WHERE account_id = $1`,
	} {
		_, err := db.ExecContext(t.Context(), stmt, acc.ID)
		if err == nil {
			t.Fatalf("%q succeeded on an append-only table", stmt)
		}
	}
}
