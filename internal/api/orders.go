package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/fastprodman/creditledger/internal/services/ledger"
)

type orderOp func(ctx context.Context, req ledger.OrderRequest) (ledger.Result, error)

// orderHandler serves POST /accounts/{accountId}/{holds|releases|charges|refunds}.
func (h *HandlerProvider) orderHandler(op orderOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, accountID, err := scope(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var body orderRequest

		err = decode(w, r, &body)
		if err != nil {
			writeError(w, r, err)
			return
		}

		amount, err := parseMoney("amount", body.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}

		key := strings.TrimSpace(body.IdempotencyKey)
		if key == "" {
			key = strings.TrimSpace(r.Header.Get(IdempotencyHeader))
		}

		res, err := op(r.Context(), ledger.OrderRequest{
			TenantID:       tenantID,
			AccountID:      accountID,
			OrderID:        body.OrderID,
			Amount:         amount,
			IdempotencyKey: key,
			CreatedBy:      body.CreatedBy,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		status := http.StatusCreated
		if res.Replayed {
			status = http.StatusOK
		}

		writeOK(w, status, toOperationDTO(res))
	}
}

// AdjustmentHandler handles POST /accounts/{accountId}/adjustments
func (h *HandlerProvider) AdjustmentHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, accountID, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body adjustmentRequest

	err = decode(w, r, &body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	delta, err := parseMoney("delta", body.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.ledger.Adjustment(r.Context(), ledger.AdjustmentRequest{
		TenantID:  tenantID,
		AccountID: accountID,
		Delta:     delta,
		Reason:    body.Reason,
		Reference: body.Reference,
		CreatedBy: body.CreatedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusCreated, toOperationDTO(res))
}
