package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/metrics"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/repos/entries"
	"github.com/fastprodman/creditledger/internal/repos/idempotency"
	"github.com/google/uuid"
)

// apply runs op against one account:
//
// 1) Lock the account row (bounded by the lock timeout and the caller's ctx).
// 2) Check the tenant and serve idempotent retries.
// 3) Check the snapshot against the last entry, or the fence for corrections.
// 4) Run credit.Apply and persist entries, snapshot and key together.
//
//nolint:cyclop,funlen
func (s *Service) apply(ctx context.Context, tenantID uint64, accountID uuid.UUID, op credit.Operation, fence *Fence) (Result, error) {
	start := time.Now()
	op.At = s.stamp()

	var res Result

	err := op.Validate()
	if err == nil {
		// Once the lock is held the transaction runs to commit or rollback
		// regardless of the caller.
		txCtx := context.WithoutCancel(ctx)

		err = pgutils.WithTx(txCtx, s.db, func(tx *sql.Tx) error {
			acc, err := s.lock(ctx, tx, accountID)
			if err != nil {
				return err
			}

			err = acc.CheckTenant(tenantID)
			if err != nil {
				return err
			}

			if op.IdempotencyKey != "" {
				replayed, ok, err := s.replay(txCtx, tx, acc, op)
				if err != nil {
					return err
				}

				if ok {
					res = replayed
					return nil
				}
			}

			if fence != nil {
				err = checkFence(acc, *fence)
			} else {
				err = s.checkDrift(txCtx, tx, acc)
			}

			if err != nil {
				return err
			}

			var totals credit.OrderTotals
			if op.Kind.IsOrderKind() {
				totals, err = s.entries.OrderTotals(txCtx, tx, acc.ID, op.OrderID)
				if err != nil {
					return fmt.Errorf("order totals: %w", err)
				}
			}

			out, err := credit.Apply(acc, totals, op)
			if err != nil {
				return err
			}

			for _, e := range out.Entries {
				err = s.entries.Insert(txCtx, tx, e)
				if err != nil {
					return fmt.Errorf("append entry: %w", err)
				}
			}

			err = s.accounts.Update(txCtx, tx, out.Account, acc.Version)
			if err != nil {
				return fmt.Errorf("update snapshot: %w", err)
			}

			if op.IdempotencyKey != "" {
				err = s.keys.Put(txCtx, tx, idempotency.Record{
					AccountID:   acc.ID,
					Key:         op.IdempotencyKey,
					EntryID:     out.Primary().ID,
					Fingerprint: op.Fingerprint(),
					CreatedAt:   op.At,
					ExpiresAt:   op.At.Add(s.cfg.IdempotencyTTL),
				})
				if err != nil {
					return fmt.Errorf("store idempotency key: %w", err)
				}
			}

			res = Result{
				Entry:           out.Primary(),
				Entries:         out.Entries,
				Account:         out.Account,
				AvailableCredit: out.Account.AvailableCredit(),
			}

			return nil
		})
	}

	err = storageError(ctx, err)
	s.observe(ctx, op, tenantID, accountID, start, res, err)

	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op.Kind, err)
	}

	return res, nil
}

// lock takes the account's row lock. Only this step honours the caller's ctx.
func (s *Service) lock(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) (credit.Account, error) {
	start := time.Now()
	defer func() { metrics.LockWait.Observe(time.Since(start).Seconds()) }()

	err := pgutils.SetLockTimeout(ctx, tx, s.cfg.LockTimeout)
	if err != nil {
		return credit.Account{}, err
	}

	acc, err := s.accounts.LockForUpdate(ctx, tx, accountID)
	if err != nil {
		return credit.Account{}, fmt.Errorf("lock account: %w", err)
	}

	return acc, nil
}

// replay serves a retried request from the idempotency store.
func (s *Service) replay(ctx context.Context, tx *sql.Tx, acc credit.Account, op credit.Operation) (Result, bool, error) {
	rec, ok, err := s.keys.Lookup(ctx, tx, acc.ID, op.IdempotencyKey, op.At)
	if err != nil || !ok {
		return Result{}, false, err
	}

	if rec.Fingerprint != op.Fingerprint() {
		return Result{}, false, fmt.Errorf("%w: key %q was used for %s",
			credit.ErrIdempotencyConflict, op.IdempotencyKey, rec.Fingerprint)
	}

	e, err := s.entries.Get(ctx, tx, acc.ID, rec.EntryID)
	if err != nil {
		return Result{}, false, fmt.Errorf("load replayed entry: %w", err)
	}

	written, err := s.writtenWith(ctx, tx, e)
	if err != nil {
		return Result{}, false, err
	}

	return Result{
		Entry:           e,
		Entries:         written,
		Account:         acc,
		AvailableCredit: acc.AvailableCredit(),
		Replayed:        true,
	}, true, nil
}

// writtenWith returns the entries the original call wrote, ending with
// primary. A charge is preceded by the release of its remainder, stamped
// with the same order and time.
func (s *Service) writtenWith(ctx context.Context, tx *sql.Tx, primary credit.Entry) ([]credit.Entry, error) {
	if primary.Kind != credit.KindCharge || primary.ID <= 1 {
		return []credit.Entry{primary}, nil
	}

	prev, err := s.entries.Get(ctx, tx, primary.AccountID, primary.ID-1)
	if err != nil {
		return nil, fmt.Errorf("load replayed remainder: %w", err)
	}

	if prev.Kind == credit.KindRelease && prev.Reason == credit.ReasonChargeRemainder &&
		prev.OrderID == primary.OrderID && prev.CreatedAt.Equal(primary.CreatedAt) {
		return []credit.Entry{prev, primary}, nil
	}

	return []credit.Entry{primary}, nil
}

// checkDrift compares the snapshot with the balance the last entry left.
func (s *Service) checkDrift(ctx context.Context, tx *sql.Tx, acc credit.Account) error {
	if acc.LastEntryID == 0 {
		if !acc.UsedCredit.IsZero() {
			return fmt.Errorf("%w: used %s with no entries", credit.ErrDriftDetected, acc.UsedCredit)
		}

		return nil
	}

	last, err := s.entries.Get(ctx, tx, acc.ID, acc.LastEntryID)
	if err != nil {
		if errors.Is(err, entries.ErrEntryNotFound) {
			return fmt.Errorf("%w: last entry %d missing", credit.ErrDriftDetected, acc.LastEntryID)
		}

		return fmt.Errorf("load last entry: %w", err)
	}

	if !last.BalanceAfter.Equal(acc.UsedCredit) {
		return fmt.Errorf("%w: used %s, entry %d left %s",
			credit.ErrDriftDetected, acc.UsedCredit, last.ID, last.BalanceAfter)
	}

	return nil
}

func checkFence(acc credit.Account, f Fence) error {
	if acc.LastEntryID != f.LastEntryID || !acc.UsedCredit.Equal(f.UsedCredit) {
		return fmt.Errorf("%w: fence (%d, %s), account (%d, %s)",
			credit.ErrStaleFence, f.LastEntryID, f.UsedCredit, acc.LastEntryID, acc.UsedCredit)
	}

	return nil
}

// storageError translates database failures into the ledger's transient
// errors. Ledger errors pass through untouched.
func storageError(ctx context.Context, err error) error {
	if err == nil || credit.Classify(err) != credit.ClassUnknown {
		return err
	}

	switch {
	case pgutils.IsLockNotAvailable(err):
		return fmt.Errorf("%w: %w", credit.ErrLockTimeout, err)
	case pgutils.IsSerializationFailure(err), errors.Is(err, idempotency.ErrKeyTaken):
		return fmt.Errorf("%w: %w", credit.ErrConcurrentModification, err)
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
		return fmt.Errorf("%w: %w", credit.ErrLockTimeout, err)
	case pgutils.IsConnectionError(err):
		return fmt.Errorf("%w: %w", credit.ErrStorageUnavailable, err)
	}

	return err
}
