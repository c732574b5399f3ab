package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/logging"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/repos/entries"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenAccount creates the credit account of a business customer.
func (s *Service) OpenAccount(ctx context.Context, req OpenAccountRequest) (credit.Account, error) {
	if req.TenantID == 0 || req.BusinessCustomerID == 0 {
		return credit.Account{}, fmt.Errorf("open account: %w: tenant and customer are required", credit.ErrInvalidAccount)
	}

	limit := credit.DefaultCreditLimit
	if req.CreditLimit != nil {
		limit = *req.CreditLimit
	}

	err := credit.ValidateLimit(limit)
	if err != nil {
		return credit.Account{}, fmt.Errorf("open account: %w", err)
	}

	now := s.stamp()
	acc := credit.Account{
		ID:                 uuid.New(),
		TenantID:           req.TenantID,
		BusinessCustomerID: req.BusinessCustomerID,
		CreditLimit:        limit,
		UsedCredit:         decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.accounts.Insert(ctx, tx, acc)
	})
	if err != nil {
		return credit.Account{}, fmt.Errorf("open account: %w", storageError(ctx, err))
	}

	s.log.InfoContext(ctx, "credit account opened",
		logging.Account(acc.TenantID, acc.ID),
		slog.Uint64("business_customer_id", acc.BusinessCustomerID),
		slog.String("credit_limit", acc.CreditLimit.String()),
		slog.String("created_by", req.CreatedBy),
	)

	return acc, nil
}

// SetCreditLimit changes the limit. Lowering it below used credit is allowed
// and blocks new holds until the account is back under the limit.
func (s *Service) SetCreditLimit(ctx context.Context, tenantID uint64, accountID uuid.UUID, limit decimal.Decimal, updatedBy string) (credit.Account, error) {
	err := credit.ValidateLimit(limit)
	if err != nil {
		return credit.Account{}, fmt.Errorf("set credit limit: %w", err)
	}

	acc, err := s.mutate(ctx, tenantID, accountID, func(_ *sql.Tx, acc *credit.Account) error {
		acc.CreditLimit = limit
		return nil
	})
	if err != nil {
		return credit.Account{}, fmt.Errorf("set credit limit: %w", err)
	}

	s.log.InfoContext(ctx, "credit limit changed",
		logging.Account(tenantID, accountID),
		slog.String("credit_limit", limit.String()),
		slog.String("updated_by", updatedBy),
	)

	return acc, nil
}

// SetFrozen sets or clears the frozen flag. A frozen account refuses holds
// and charges; releases, refunds and adjustments still go through.
func (s *Service) SetFrozen(ctx context.Context, tenantID uint64, accountID uuid.UUID, frozen bool, updatedBy string) (credit.Account, error) {
	acc, err := s.mutate(ctx, tenantID, accountID, func(_ *sql.Tx, acc *credit.Account) error {
		acc.Frozen = frozen
		return nil
	})
	if err != nil {
		return credit.Account{}, fmt.Errorf("set frozen: %w", err)
	}

	s.log.InfoContext(ctx, "credit account frozen flag changed",
		logging.Account(tenantID, accountID),
		slog.Bool("frozen", frozen),
		slog.String("updated_by", updatedBy),
	)

	return acc, nil
}

// mutate applies an administrative change to the locked snapshot. change runs
// inside the transaction and may write related rows through tx.
func (s *Service) mutate(ctx context.Context, tenantID uint64, accountID uuid.UUID, change func(tx *sql.Tx, acc *credit.Account) error) (credit.Account, error) {
	var out credit.Account

	txCtx := context.WithoutCancel(ctx)

	err := pgutils.WithTx(txCtx, s.db, func(tx *sql.Tx) error {
		acc, err := s.lock(ctx, tx, accountID)
		if err != nil {
			return err
		}

		err = acc.CheckTenant(tenantID)
		if err != nil {
			return err
		}

		next := acc

		err = change(tx, &next)
		if err != nil {
			return err
		}

		next.Version = acc.Version + 1
		next.UpdatedAt = s.stamp()

		err = s.accounts.Update(txCtx, tx, next, acc.Version)
		if err != nil {
			return err
		}

		out = next

		return nil
	})
	if err != nil {
		return credit.Account{}, storageError(ctx, err)
	}

	return out, nil
}

// Status reads the account snapshot without locking it.
func (s *Service) Status(ctx context.Context, tenantID uint64, accountID uuid.UUID) (credit.Account, error) {
	acc, err := s.accounts.Get(ctx, s.db, accountID)
	if err != nil {
		return credit.Account{}, fmt.Errorf("status: %w", storageError(ctx, err))
	}

	err = acc.CheckTenant(tenantID)
	if err != nil {
		return credit.Account{}, fmt.Errorf("status: %w", err)
	}

	return acc, nil
}

// History lists the account's entries, newest first.
func (s *Service) History(ctx context.Context, tenantID uint64, accountID uuid.UUID, f entries.Filter) ([]credit.Entry, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, fmt.Errorf("history: %w: %q", credit.ErrInvalidKind, f.Kind)
	}

	var out []credit.Entry

	err := pgutils.WithSnapshot(ctx, s.db, func(tx *sql.Tx) error {
		acc, err := s.accounts.Get(ctx, tx, accountID)
		if err != nil {
			return err
		}

		err = acc.CheckTenant(tenantID)
		if err != nil {
			return err
		}

		out, err = s.entries.List(ctx, tx, accountID, f)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("history: %w", storageError(ctx, err))
	}

	return out, nil
}
