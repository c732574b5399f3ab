package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgtestutil"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
)

func TestAccounts_LockForUpdate_SecondWaiterTimesOut(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New()
	acc := testAccount(5, 1, "500")
	seedAccount(t, db, acc)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	holder, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin holder: %v", err)
	}
	defer func() { _ = holder.Rollback() }()

	_, err = repo.LockForUpdate(ctx, holder, acc.ID)
	if err != nil {
		t.Fatalf("holder lock: %v", err)
	}

	waiter, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin waiter: %v", err)
	}
	defer func() { _ = waiter.Rollback() }()

	err = pgutils.SetLockTimeout(ctx, waiter, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("set lock timeout: %v", err)
	}

	_, err = repo.LockForUpdate(ctx, waiter, acc.ID)
	if !pgutils.IsLockNotAvailable(err) {
		t.Fatalf("want lock_not_available, got %v", err)
	}
}

func TestAccounts_LockForUpdate_Missing(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = New().LockForUpdate(t.Context(), tx, uuid.New())
	if !errors.Is(err, credit.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}
