package ledger

import (
	"context"

	"github.com/fastprodman/creditledger/internal/credit"
)

// Hold reserves credit for an order.
func (s *Service) Hold(ctx context.Context, req OrderRequest) (Result, error) {
	return s.order(ctx, credit.KindHold, req)
}

// Release returns part or all of an order's outstanding hold.
func (s *Service) Release(ctx context.Context, req OrderRequest) (Result, error) {
	return s.order(ctx, credit.KindRelease, req)
}

// Charge converts held credit into charged credit. Any outstanding hold left
// over is released in the same transaction.
func (s *Service) Charge(ctx context.Context, req OrderRequest) (Result, error) {
	return s.order(ctx, credit.KindCharge, req)
}

// Refund gives back charged credit, up to what the order was charged.
func (s *Service) Refund(ctx context.Context, req OrderRequest) (Result, error) {
	return s.order(ctx, credit.KindRefund, req)
}

func (s *Service) order(ctx context.Context, kind credit.Kind, req OrderRequest) (Result, error) {
	return s.apply(ctx, req.TenantID, req.AccountID, credit.Operation{
		Kind:           kind,
		OrderID:        req.OrderID,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
		CreatedBy:      req.CreatedBy,
	}, nil)
}

// Adjustment moves used credit by a signed delta outside any order. It is not
// deduplicated by key and may leave the account over its limit.
func (s *Service) Adjustment(ctx context.Context, req AdjustmentRequest) (Result, error) {
	return s.apply(ctx, req.TenantID, req.AccountID, credit.Operation{
		Kind:       credit.KindAdjustment,
		Delta:      req.Delta,
		Reason:     req.Reason,
		Reference:  req.Reference,
		CreatedBy:  req.CreatedBy,
		Correction: req.Fence != nil,
	}, req.Fence)
}
