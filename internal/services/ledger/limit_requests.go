package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/infra/logging"
	"github.com/fastprodman/creditledger/internal/infra/pgutils"
	"github.com/fastprodman/creditledger/internal/repos/limitrequests"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncreaseRequest asks for an account's credit limit to be raised by Amount.
type IncreaseRequest struct {
	TenantID      uint64
	AccountID     uuid.UUID
	Amount        decimal.Decimal
	Reason        string
	Justification string
	RequestedBy   string
}

// DecisionRequest answers a pending increase request. ApprovedAmount is the
// increase granted and only read on approval.
type DecisionRequest struct {
	TenantID       uint64
	RequestID      uuid.UUID
	Decision       credit.Decision
	ApprovedAmount decimal.Decimal
	Notes          string
	DecidedBy      string
}

// Decided is the stored decision together with the account it left behind.
type Decided struct {
	Request credit.LimitRequest
	Account credit.Account
}

// RequestIncrease files a pending increase request. An account has at most
// one pending request at a time.
func (s *Service) RequestIncrease(ctx context.Context, req IncreaseRequest) (credit.LimitRequest, error) {
	r := credit.LimitRequest{
		ID:            uuid.New(),
		TenantID:      req.TenantID,
		AccountID:     req.AccountID,
		Amount:        req.Amount,
		Reason:        req.Reason,
		Justification: req.Justification,
		RequestedBy:   req.RequestedBy,
		Status:        credit.RequestPending,
		CreatedAt:     s.stamp(),
	}

	err := r.Validate()
	if err != nil {
		return credit.LimitRequest{}, fmt.Errorf("request increase: %w", err)
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		acc, err := s.accounts.Get(ctx, tx, req.AccountID)
		if err != nil {
			return err
		}

		err = acc.CheckTenant(req.TenantID)
		if err != nil {
			return err
		}

		return s.requests.Insert(ctx, tx, r)
	})
	if err != nil {
		return credit.LimitRequest{}, fmt.Errorf("request increase: %w", storageError(ctx, err))
	}

	s.log.InfoContext(ctx, "credit limit increase requested",
		logging.Account(r.TenantID, r.AccountID),
		slog.String("request_id", r.ID.String()),
		slog.String("amount", r.Amount.String()),
		slog.String("requested_by", r.RequestedBy),
	)

	return r, nil
}

// LimitRequest reads one request of the tenant.
func (s *Service) LimitRequest(ctx context.Context, tenantID uint64, id uuid.UUID) (credit.LimitRequest, error) {
	r, err := s.requests.Get(ctx, s.db, id)
	if err != nil {
		return credit.LimitRequest{}, fmt.Errorf("limit request: %w", storageError(ctx, err))
	}

	if r.TenantID != tenantID {
		return credit.LimitRequest{}, fmt.Errorf("limit request: %w: request %s", credit.ErrTenantMismatch, id)
	}

	return r, nil
}

// ListRequests lists the tenant's increase requests, newest first.
func (s *Service) ListRequests(ctx context.Context, f limitrequests.Filter) ([]credit.LimitRequest, error) {
	if f.TenantID == 0 {
		return nil, fmt.Errorf("list requests: %w: tenant required", credit.ErrInvalidLimitRequest)
	}

	if f.Status != "" {
		_, err := credit.ParseRequestStatus(string(f.Status))
		if err != nil {
			return nil, fmt.Errorf("list requests: %w", err)
		}
	}

	out, err := s.requests.List(ctx, s.db, f)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", storageError(ctx, err))
	}

	return out, nil
}

// DecideRequest approves or rejects a pending request. Approval raises the
// credit limit by the approved amount under the account lock, in the same
// transaction that stores the decision.
func (s *Service) DecideRequest(ctx context.Context, req DecisionRequest) (Decided, error) {
	current, err := s.LimitRequest(ctx, req.TenantID, req.RequestID)
	if err != nil {
		return Decided{}, fmt.Errorf("decide request: %w", err)
	}

	at := s.stamp()

	// Reject bad input before taking any lock.
	_, err = current.Decide(req.Decision, req.ApprovedAmount, req.Notes, req.DecidedBy, at)
	if err != nil {
		return Decided{}, fmt.Errorf("decide request: %w", err)
	}

	var out Decided

	switch req.Decision {
	case credit.DecisionApprove:
		out, err = s.approve(ctx, current, req, at)
	case credit.DecisionReject:
		out, err = s.reject(ctx, current, req, at)
	}

	if err != nil {
		return Decided{}, fmt.Errorf("decide request: %w", err)
	}

	s.log.InfoContext(ctx, "credit limit request decided",
		logging.Account(req.TenantID, out.Request.AccountID),
		slog.String("request_id", out.Request.ID.String()),
		slog.String("status", string(out.Request.Status)),
		slog.String("approved_amount", out.Request.ApprovedAmount.String()),
		slog.String("credit_limit", out.Account.CreditLimit.String()),
		slog.String("decided_by", req.DecidedBy),
	)

	return out, nil
}

func (s *Service) approve(ctx context.Context, current credit.LimitRequest, req DecisionRequest, at time.Time) (Decided, error) {
	txCtx := context.WithoutCancel(ctx)

	var decided credit.LimitRequest

	acc, err := s.mutate(ctx, req.TenantID, current.AccountID, func(tx *sql.Tx, acc *credit.Account) error {
		locked, err := s.requests.LockForUpdate(txCtx, tx, current.ID)
		if err != nil {
			return err
		}

		decided, err = locked.Decide(req.Decision, req.ApprovedAmount, req.Notes, req.DecidedBy, at)
		if err != nil {
			return err
		}

		limit := acc.CreditLimit.Add(decided.ApprovedAmount)

		err = credit.ValidateLimit(limit)
		if err != nil {
			return err
		}

		decided.PreviousLimit = acc.CreditLimit
		decided.NewLimit = limit
		acc.CreditLimit = limit

		return s.requests.Decide(txCtx, tx, decided)
	})
	if err != nil {
		return Decided{}, err
	}

	return Decided{Request: decided, Account: acc}, nil
}

func (s *Service) reject(ctx context.Context, current credit.LimitRequest, req DecisionRequest, at time.Time) (Decided, error) {
	txCtx := context.WithoutCancel(ctx)

	var decided credit.LimitRequest

	err := pgutils.WithTx(txCtx, s.db, func(tx *sql.Tx) error {
		locked, err := s.requests.LockForUpdate(ctx, tx, current.ID)
		if err != nil {
			return err
		}

		decided, err = locked.Decide(req.Decision, req.ApprovedAmount, req.Notes, req.DecidedBy, at)
		if err != nil {
			return err
		}

		return s.requests.Decide(txCtx, tx, decided)
	})
	if err != nil {
		return Decided{}, storageError(ctx, err)
	}

	acc, err := s.accounts.Get(ctx, s.db, decided.AccountID)
	if err != nil {
		return Decided{}, storageError(ctx, err)
	}

	return Decided{Request: decided, Account: acc}, nil
}
