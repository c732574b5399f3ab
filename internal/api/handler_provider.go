package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/repos/entries"
	"github.com/fastprodman/creditledger/internal/repos/limitrequests"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/fastprodman/creditledger/internal/services/reconciliation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantHeader carries the tenant resolved by the upstream auth layer.
const TenantHeader = "X-Tenant-ID"

// IdempotencyHeader may carry the key instead of the request body.
const IdempotencyHeader = "Idempotency-Key"

type Ledger interface {
	Hold(ctx context.Context, req ledger.OrderRequest) (ledger.Result, error)
	Release(ctx context.Context, req ledger.OrderRequest) (ledger.Result, error)
	Charge(ctx context.Context, req ledger.OrderRequest) (ledger.Result, error)
	Refund(ctx context.Context, req ledger.OrderRequest) (ledger.Result, error)
	Adjustment(ctx context.Context, req ledger.AdjustmentRequest) (ledger.Result, error)
	OpenAccount(ctx context.Context, req ledger.OpenAccountRequest) (credit.Account, error)
	SetCreditLimit(ctx context.Context, tenantID uint64, accountID uuid.UUID, limit decimal.Decimal, updatedBy string) (credit.Account, error)
	SetFrozen(ctx context.Context, tenantID uint64, accountID uuid.UUID, frozen bool, updatedBy string) (credit.Account, error)
	Status(ctx context.Context, tenantID uint64, accountID uuid.UUID) (credit.Account, error)
	History(ctx context.Context, tenantID uint64, accountID uuid.UUID, f entries.Filter) ([]credit.Entry, error)
	RequestIncrease(ctx context.Context, req ledger.IncreaseRequest) (credit.LimitRequest, error)
	LimitRequest(ctx context.Context, tenantID uint64, id uuid.UUID) (credit.LimitRequest, error)
	ListRequests(ctx context.Context, f limitrequests.Filter) ([]credit.LimitRequest, error)
	DecideRequest(ctx context.Context, req ledger.DecisionRequest) (ledger.Decided, error)
}

type Reconciler interface {
	Verify(ctx context.Context, tenantID uint64, accountID uuid.UUID) (reconciliation.DriftReport, error)
	Repair(ctx context.Context, tenantID uint64, accountID uuid.UUID, createdBy string) (reconciliation.RepairResult, error)
}

// HandlerProvider exposes the ledger and reconciliation services over HTTP.
type HandlerProvider struct {
	ledger Ledger
	recon  Reconciler
}

func NewHandler(l Ledger, r Reconciler) *HandlerProvider {
	return &HandlerProvider{ledger: l, recon: r}
}

// errBadRequest marks malformed requests rejected before reaching the ledger.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeOK(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, okEnvelope{OK: payload})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind, msg := mapError(err)

	if status >= http.StatusInternalServerError && kind == "internal" {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}

	writeJSON(w, status, errorEnvelope{Error: errorBody{Kind: kind, Message: msg}})
}

func parseTenant(r *http.Request) (uint64, error) {
	raw := strings.TrimSpace(r.Header.Get(TenantHeader))
	if raw == "" {
		return 0, badRequest("missing %s header", TenantHeader)
	}

	id, err := strconv.ParseUint(raw, 10, 63)
	if err != nil || id == 0 {
		return 0, badRequest("invalid %s header", TenantHeader)
	}

	return id, nil
}

func parseAccountID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "accountId"))
	if err != nil {
		return uuid.Nil, badRequest("invalid accountId in path")
	}

	return id, nil
}

// scope reads the tenant header and the account path parameter.
func scope(r *http.Request) (uint64, uuid.UUID, error) {
	tenantID, err := parseTenant(r)
	if err != nil {
		return 0, uuid.Nil, err
	}

	accountID, err := parseAccountID(r)
	if err != nil {
		return 0, uuid.Nil, err
	}

	return tenantID, accountID, nil
}

// decode reads a JSON body, rejecting unknown fields and bodies over 1MB.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	//nolint:errcheck
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty body")
		}

		return badRequest("invalid JSON: %v", err)
	}

	return nil
}

// parseMoney parses a decimal string. Range and scale checks belong to the
// ledger so that every entry point reports them the same way.
func parseMoney(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: %s required", credit.ErrInvalidAmount, field)
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q is not a number", credit.ErrInvalidAmount, field, s)
	}

	return v, nil
}
