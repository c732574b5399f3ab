package idempotency

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/google/uuid"
)

// ErrKeyTaken is returned by Put when a live record already holds the key.
var ErrKeyTaken = errors.New("idempotency key taken")

// Record binds a key to the entry it produced.
type Record struct {
	AccountID   uuid.UUID
	Key         string
	EntryID     int64
	Fingerprint string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the record no longer deduplicates at now.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

type Store interface {
	// Lookup returns the live record for key, or false when there is none or
	// it has expired at now.
	Lookup(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, key string, now time.Time) (Record, bool, error)
	// Put stores rec, replacing an expired record for the same key.
	Put(ctx context.Context, tx *sql.Tx, rec Record) error
	PurgeExpired(ctx context.Context, q pgutils.Querier, now time.Time) (int64, error)
}
