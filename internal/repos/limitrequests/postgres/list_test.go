package limitrequests

import (
	"database/sql"
	"testing"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgtestutil"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/repos/limitrequests"
)

func TestLimitRequests_List(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	a := seedAccount(t, db, 6, 601)
	b := seedAccount(t, db, 6, 602)
	other := seedAccount(t, db, 7, 701)

	old := newRequest(a, "100", baseTime)

	for _, req := range []credit.LimitRequest{old, newRequest(other, "400", baseTime.Add(time.Minute))} {
		err := insert(t, db, req)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	rejected, err := old.Decide(credit.DecisionReject, d("0"), "", "risk", baseTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	err = pgutils.WithTx(t.Context(), db, func(tx *sql.Tx) error {
		return New().Decide(t.Context(), tx, rejected)
	})
	if err != nil {
		t.Fatalf("store decision: %v", err)
	}

	for i, req := range []credit.LimitRequest{
		newRequest(a, "200", baseTime.Add(2*time.Hour)),
		newRequest(b, "300", baseTime.Add(3*time.Hour)),
	} {
		err := insert(t, db, req)
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	tests := []struct {
		name    string
		filter  limitrequests.Filter
		amounts []string
	}{
		{name: "tenant", filter: limitrequests.Filter{TenantID: 6}, amounts: []string{"300", "200", "100"}},
		{name: "pending", filter: limitrequests.Filter{TenantID: 6, Status: credit.RequestPending}, amounts: []string{"300", "200"}},
		{name: "rejected", filter: limitrequests.Filter{TenantID: 6, Status: credit.RequestRejected}, amounts: []string{"100"}},
		{name: "account", filter: limitrequests.Filter{TenantID: 6, AccountID: a.ID}, amounts: []string{"200", "100"}},
		{name: "page", filter: limitrequests.Filter{TenantID: 6, Limit: 1, Offset: 1}, amounts: []string{"200"}},
		{name: "other_tenant", filter: limitrequests.Filter{TenantID: 7}, amounts: []string{"400"}},
		{name: "empty_tenant", filter: limitrequests.Filter{TenantID: 8}},
	}

	for _, tt := range tests {
		got, err := New().List(t.Context(), db, tt.filter)
		if err != nil {
			t.Fatalf("%s: list: %v", tt.name, err)
		}

		if len(got) != len(tt.amounts) {
			t.Fatalf("%s: want %d requests, got %d", tt.name, len(tt.amounts), len(got))
		}

		for i, want := range tt.amounts {
			if !got[i].Amount.Equal(d(want)) {
				t.Fatalf("%s: request %d: want %s, got %s", tt.name, i, want, got[i].Amount)
			}
		}
	}
}
