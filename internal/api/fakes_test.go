package api

import (
	"context"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/repos/entries"
	"github.com/fastprodman/creditledger/internal/repos/limitrequests"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/fastprodman/creditledger/internal/services/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeLedger records the last request and answers with canned values.
type fakeLedger struct {
	result  ledger.Result
	account credit.Account
	entries []credit.Entry
	request credit.LimitRequest
	err     error

	lastKind   credit.Kind
	lastOrder  ledger.OrderRequest
	lastAdjust ledger.AdjustmentRequest
	lastOpen   ledger.OpenAccountRequest
	lastFilter entries.Filter
	lastLimit  decimal.Decimal
	lastFrozen *bool
	lastTenant uint64

	lastIncrease    ledger.IncreaseRequest
	lastDecision    ledger.DecisionRequest
	lastReqFilter   limitrequests.Filter
	lastRequestID   uuid.UUID
	requestsReached bool
}

func (f *fakeLedger) order(kind credit.Kind, req ledger.OrderRequest) (ledger.Result, error) {
	f.lastKind = kind
	f.lastOrder = req
	f.lastTenant = req.TenantID

	return f.result, f.err
}

func (f *fakeLedger) Hold(_ context.Context, req ledger.OrderRequest) (ledger.Result, error) {
	return f.order(credit.KindHold, req)
}

func (f *fakeLedger) Release(_ context.Context, req ledger.OrderRequest) (ledger.Result, error) {
	return f.order(credit.KindRelease, req)
}

func (f *fakeLedger) Charge(_ context.Context, req ledger.OrderRequest) (ledger.Result, error) {
	return f.order(credit.KindCharge, req)
}

func (f *fakeLedger) Refund(_ context.Context, req ledger.OrderRequest) (ledger.Result, error) {
	return f.order(credit.KindRefund, req)
}

func (f *fakeLedger) Adjustment(_ context.Context, req ledger.AdjustmentRequest) (ledger.Result, error) {
	f.lastKind = credit.KindAdjustment
	f.lastAdjust = req

	return f.result, f.err
}

func (f *fakeLedger) OpenAccount(_ context.Context, req ledger.OpenAccountRequest) (credit.Account, error) {
	f.lastOpen = req

	return f.account, f.err
}

func (f *fakeLedger) SetCreditLimit(_ context.Context, tenantID uint64, _ uuid.UUID, limit decimal.Decimal, _ string) (credit.Account, error) {
	f.lastTenant = tenantID
	f.lastLimit = limit

	return f.account, f.err
}

func (f *fakeLedger) SetFrozen(_ context.Context, tenantID uint64, _ uuid.UUID, frozen bool, _ string) (credit.Account, error) {
	f.lastTenant = tenantID
	f.lastFrozen = &frozen

	return f.account, f.err
}

func (f *fakeLedger) Status(_ context.Context, tenantID uint64, _ uuid.UUID) (credit.Account, error) {
	f.lastTenant = tenantID

	return f.account, f.err
}

func (f *fakeLedger) History(_ context.Context, tenantID uint64, _ uuid.UUID, filter entries.Filter) ([]credit.Entry, error) {
	f.lastTenant = tenantID
	f.lastFilter = filter

	return f.entries, f.err
}

func (f *fakeLedger) RequestIncrease(_ context.Context, req ledger.IncreaseRequest) (credit.LimitRequest, error) {
	f.requestsReached = true
	f.lastIncrease = req

	return f.request, f.err
}

func (f *fakeLedger) LimitRequest(_ context.Context, tenantID uint64, id uuid.UUID) (credit.LimitRequest, error) {
	f.requestsReached = true
	f.lastTenant = tenantID
	f.lastRequestID = id

	return f.request, f.err
}

func (f *fakeLedger) ListRequests(_ context.Context, filter limitrequests.Filter) ([]credit.LimitRequest, error) {
	f.requestsReached = true
	f.lastReqFilter = filter

	return []credit.LimitRequest{f.request}, f.err
}

func (f *fakeLedger) DecideRequest(_ context.Context, req ledger.DecisionRequest) (ledger.Decided, error) {
	f.requestsReached = true
	f.lastDecision = req

	return ledger.Decided{Request: f.request, Account: f.account}, f.err
}

type fakeReconciler struct {
	report    reconciliation.DriftReport
	repair    reconciliation.RepairResult
	err       error
	createdBy string
}

func (f *fakeReconciler) Verify(_ context.Context, _ uint64, _ uuid.UUID) (reconciliation.DriftReport, error) {
	return f.report, f.err
}

func (f *fakeReconciler) Repair(_ context.Context, _ uint64, _ uuid.UUID, createdBy string) (reconciliation.RepairResult, error) {
	f.createdBy = createdBy

	return f.repair, f.err
}
