package limitrequests

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgtestutil"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
)

func TestLimitRequests_InsertAndGet(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	acc := seedAccount(t, db, 4, 400)
	req := newRequest(acc, "2500.00", baseTime)

	err := insert(t, db, req)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := New().Get(t.Context(), db, req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.AccountID != acc.ID || got.TenantID != 4 || got.Status != credit.RequestPending {
		t.Fatalf("request mismatch: %+v", got)
	}

	if !got.Amount.Equal(d("2500")) || got.Justification != req.Justification {
		t.Fatalf("fields mismatch: %+v", got)
	}

	if !got.DecidedAt.IsZero() {
		t.Fatalf("pending request has decided_at %s", got.DecidedAt)
	}

	_, err = New().Get(t.Context(), db, uuid.New())
	if !errors.Is(err, credit.ErrLimitRequestNotFound) {
		t.Fatalf("want ErrLimitRequestNotFound, got %v", err)
	}
}

func TestLimitRequests_OnePendingPerAccount(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	acc := seedAccount(t, db, 4, 401)
	first := newRequest(acc, "500", baseTime)

	err := insert(t, db, first)
	if err != nil {
		t.Fatalf("insert first: %v", err)
	}

	err = insert(t, db, newRequest(acc, "600", baseTime.Add(time.Minute)))
	if !errors.Is(err, credit.ErrLimitRequestPending) {
		t.Fatalf("want ErrLimitRequestPending, got %v", err)
	}

	// Once the first is decided a new one may be filed.
	decided, err := first.Decide(credit.DecisionReject, d("0"), "", "risk", baseTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	err = pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
		return New().Decide(t.Context(), tx, decided)
	})
	if err != nil {
		t.Fatalf("store decision: %v", err)
	}

	err = insert(t, db, newRequest(acc, "600", baseTime.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("insert after decision: %v", err)
	}
}
