package accounts

import (
	"testing"

	"github.com/fastprodman/creditledger/internal/infra/pgtestutil"
	"github.com/google/uuid"
)

func TestAccounts_ListRefs_Pages(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	for i := range 5 {
		seedAccount(t, db, testAccount(1, uint64(100+i), "100"))
	}

	repo := New()
	seen := map[uuid.UUID]bool{}
	after := uuid.Nil
	pages := 0

	for {
		refs, err := repo.ListRefs(t.Context(), db, after, 2)
		if err != nil {
			t.Fatalf("list refs: %v", err)
		}

		if len(refs) == 0 {
			break
		}

		pages++

		for _, ref := range refs {
			if seen[ref.ID] {
				t.Fatalf("account %s listed twice", ref.ID)
			}

			if ref.TenantID != 1 {
				t.Fatalf("tenant: want 1, got %d", ref.TenantID)
			}

			seen[ref.ID] = true
		}

		after = refs[len(refs)-1].ID
	}

	if len(seen) != 5 || pages != 3 {
		t.Fatalf("want 5 accounts over 3 pages, got %d over %d", len(seen), pages)
	}
}
