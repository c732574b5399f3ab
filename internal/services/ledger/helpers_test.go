package ledger

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fastprodman/creditledger/internal/config"
	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/pgtestutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const tenant uint64 = 11

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(dt time.Duration) { c.t = c.t.Add(dt) }

type fixture struct {
	db    *sql.DB
	svc   *Service
	clock *clock
	acc   credit.Account
}

func newFixture(t *testing.T, limit string) *fixture {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	// Stay well under the server's connection limit when tests hammer one account.
	db.SetMaxOpenConns(20)

	clk := &clock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	cfg := config.DefaultLedger()
	cfg.LockTimeout = 10 * time.Second

	svc := New(db, cfg,
		WithClock(clk.Now),
		WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))),
	)

	l := d(limit)
	acc, err := svc.OpenAccount(t.Context(), OpenAccountRequest{
		TenantID:           tenant,
		BusinessCustomerID: 500,
		CreditLimit:        &l,
		CreatedBy:          "admin@example.gr",
	})
	require.NoError(t, err)

	return &fixture{db: db, svc: svc, clock: clk, acc: acc}
}

func (f *fixture) order(orderID uint64, amount, key string) OrderRequest {
	return OrderRequest{
		TenantID:       tenant,
		AccountID:      f.acc.ID,
		OrderID:        orderID,
		Amount:         d(amount),
		IdempotencyKey: key,
		CreatedBy:      "checkout",
	}
}

func (f *fixture) status(t *testing.T) credit.Account {
	t.Helper()

	acc, err := f.svc.Status(t.Context(), tenant, f.acc.ID)
	require.NoError(t, err)

	return acc
}

func (f *fixture) replay(t *testing.T) credit.ReplayResult {
	t.Helper()

	acc := f.status(t)
	es, err := f.svc.entries.ListUpTo(t.Context(), f.db, acc.ID, acc.LastEntryID)
	require.NoError(t, err)

	return credit.Replay(es)
}

func newID() uuid.UUID { return uuid.New() }
