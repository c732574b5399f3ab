// Package ledger is the only writer of credit balances. Every operation runs
// in one database transaction that holds the account's row lock from the
// first read to the commit.
package ledger

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/fastprodman/creditledger/internal/config"
	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/creditledger/internal/repos/accounts/postgres"
	"github.com/fastprodman/creditledger/internal/repos/entries"
	pgentries "github.com/fastprodman/creditledger/internal/repos/entries/postgres"
	"github.com/fastprodman/creditledger/internal/repos/idempotency"
	pgidempotency "github.com/fastprodman/creditledger/internal/repos/idempotency/postgres"
	"github.com/fastprodman/creditledger/internal/repos/limitrequests"
	pglimitrequests "github.com/fastprodman/creditledger/internal/repos/limitrequests/postgres"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRequest drives hold, release, charge and refund.
type OrderRequest struct {
	TenantID       uint64
	AccountID      uuid.UUID
	OrderID        uint64
	Amount         decimal.Decimal
	IdempotencyKey string
	CreatedBy      string
}

// Fence pins an adjustment to the account state it was computed from.
type Fence struct {
	LastEntryID int64
	UsedCredit  decimal.Decimal
}

type AdjustmentRequest struct {
	TenantID  uint64
	AccountID uuid.UUID
	Delta     decimal.Decimal
	Reason    string
	// Reference points at an outside document such as an invoice or a ticket.
	Reference string
	CreatedBy string
	// Fence, when set, turns the adjustment into a reconciliation correction.
	Fence *Fence
}

// Result answers a ledger operation.
type Result struct {
	Entry           credit.Entry
	Entries         []credit.Entry
	Account         credit.Account
	AvailableCredit decimal.Decimal
	Replayed        bool
}

type OpenAccountRequest struct {
	TenantID           uint64
	BusinessCustomerID uint64
	// CreditLimit defaults to credit.DefaultCreditLimit when nil.
	CreditLimit *decimal.Decimal
	CreatedBy   string
}

type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	entries  entries.Entries
	keys     idempotency.Store
	requests limitrequests.LimitRequests
	cfg      config.LedgerConfig
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(db *sql.DB, cfg config.LedgerConfig, opts ...Option) *Service {
	s := &Service{
		db:       db,
		accounts: pgaccounts.New(),
		entries:  pgentries.New(),
		keys:     pgidempotency.New(),
		requests: pglimitrequests.New(),
		cfg:      cfg,
		now:      time.Now,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// stamp is the commit timestamp at the precision Postgres stores.
func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
