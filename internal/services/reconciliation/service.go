// Package reconciliation replays account histories against their snapshots
// and repairs snapshot drift through the ledger engine.
package reconciliation

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/fastprodman/creditledger/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/creditledger/internal/repos/accounts/postgres"
	"github.com/fastprodman/creditledger/internal/repos/entries"
	pgentries "github.com/fastprodman/creditledger/internal/repos/entries/postgres"
	"github.com/fastprodman/creditledger/internal/repos/idempotency"
	pgidempotency "github.com/fastprodman/creditledger/internal/repos/idempotency/postgres"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Adjuster is the part of the ledger engine reconciliation writes through.
type Adjuster interface {
	Adjustment(ctx context.Context, req ledger.AdjustmentRequest) (ledger.Result, error)
}

// DriftReport compares an account's snapshot with its replayed history up to
// the fence. FirstDivergingEntryID is 0 when the history chains cleanly, even
// if the snapshot disagrees with it.
type DriftReport struct {
	TenantID              uint64
	AccountID             uuid.UUID
	Consistent            bool
	Stored                decimal.Decimal
	Computed              decimal.Decimal
	FirstDivergingEntryID int64
	Fence                 int64
	Entries               int
}

// Delta is what a correction has to add to the snapshot.
func (r DriftReport) Delta() decimal.Decimal {
	return r.Computed.Sub(r.Stored)
}

type RepairResult struct {
	Report   DriftReport
	Repaired bool
	Result   ledger.Result
}

type Service struct {
	db       *sql.DB
	ledger   Adjuster
	accounts accounts.Accounts
	entries  entries.Entries
	keys     idempotency.Store
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(db *sql.DB, adj Adjuster, opts ...Option) *Service {
	s := &Service{
		db:       db,
		ledger:   adj,
		accounts: pgaccounts.New(),
		entries:  pgentries.New(),
		keys:     pgidempotency.New(),
		now:      time.Now,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
