package api

import (
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/fastprodman/creditledger/internal/services/reconciliation"
	"github.com/shopspring/decimal"
)

type okEnvelope struct {
	OK any `json:"ok"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// --- Requests ---

type orderRequest struct {
	OrderID        uint64 `json:"orderId"`
	Amount         string `json:"amount"`
	IdempotencyKey string `json:"idempotencyKey"`
	CreatedBy      string `json:"createdBy"`
}

type adjustmentRequest struct {
	Delta     string `json:"delta"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
	CreatedBy string `json:"createdBy"`
}

type openAccountRequest struct {
	BusinessCustomerID uint64  `json:"businessCustomerId"`
	CreditLimit        *string `json:"creditLimit"`
	CreatedBy          string  `json:"createdBy"`
}

type limitRequest struct {
	CreditLimit string `json:"creditLimit"`
	UpdatedBy   string `json:"updatedBy"`
}

type frozenRequest struct {
	Frozen    *bool  `json:"frozen"`
	UpdatedBy string `json:"updatedBy"`
}

type increaseRequest struct {
	Amount        string `json:"amount"`
	Reason        string `json:"reason"`
	Justification string `json:"justification"`
	RequestedBy   string `json:"requestedBy"`
}

type decisionRequest struct {
	Action         string `json:"action"`
	ApprovedAmount string `json:"approvedAmount"`
	Notes          string `json:"notes"`
	DecidedBy      string `json:"decidedBy"`
}

type repairRequest struct {
	CreatedBy string `json:"createdBy"`
}

// --- Responses ---

func money(d decimal.Decimal) string {
	return d.StringFixed(credit.MoneyScale)
}

type entryDTO struct {
	ID             int64     `json:"id"`
	AccountID      string    `json:"accountId"`
	TenantID       uint64    `json:"tenantId"`
	Kind           string    `json:"kind"`
	Effect         string    `json:"effect"`
	Amount         string    `json:"amount"`
	BalanceBefore  string    `json:"balanceBefore"`
	BalanceAfter   string    `json:"balanceAfter"`
	OrderID        uint64    `json:"orderId,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Reference      string    `json:"reference,omitempty"`
	Correction     bool      `json:"correction,omitempty"`
	CreatedBy      string    `json:"createdBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toEntryDTO(e credit.Entry) entryDTO {
	return entryDTO{
		ID:             e.ID,
		AccountID:      e.AccountID.String(),
		TenantID:       e.TenantID,
		Kind:           string(e.Kind),
		Effect:         string(e.Effect),
		Amount:         money(e.Amount),
		BalanceBefore:  money(e.BalanceBefore),
		BalanceAfter:   money(e.BalanceAfter),
		OrderID:        e.OrderID,
		IdempotencyKey: e.IdempotencyKey,
		Reason:         e.Reason,
		Reference:      e.Reference,
		Correction:     e.Correction,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}

func toEntryDTOs(es []credit.Entry) []entryDTO {
	out := make([]entryDTO, 0, len(es))
	for _, e := range es {
		out = append(out, toEntryDTO(e))
	}

	return out
}

type accountDTO struct {
	ID                 string    `json:"id"`
	TenantID           uint64    `json:"tenantId"`
	BusinessCustomerID uint64    `json:"businessCustomerId"`
	CreditLimit        string    `json:"creditLimit"`
	UsedCredit         string    `json:"usedCredit"`
	AvailableCredit    string    `json:"availableCredit"`
	Frozen             bool      `json:"frozen"`
	OverLimit          bool      `json:"overLimit"`
	Version            int64     `json:"version"`
	LastEntryID        int64     `json:"lastEntryId"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func toAccountDTO(a credit.Account) accountDTO {
	return accountDTO{
		ID:                 a.ID.String(),
		TenantID:           a.TenantID,
		BusinessCustomerID: a.BusinessCustomerID,
		CreditLimit:        money(a.CreditLimit),
		UsedCredit:         money(a.UsedCredit),
		AvailableCredit:    money(a.AvailableCredit()),
		Frozen:             a.Frozen,
		OverLimit:          a.OverLimit(),
		Version:            a.Version,
		LastEntryID:        a.LastEntryID,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

type operationDTO struct {
	Entry           entryDTO   `json:"entry"`
	Entries         []entryDTO `json:"entries"`
	AvailableCredit string     `json:"availableCredit"`
	Replayed        bool       `json:"replayed"`
}

func toOperationDTO(res ledger.Result) operationDTO {
	return operationDTO{
		Entry:           toEntryDTO(res.Entry),
		Entries:         toEntryDTOs(res.Entries),
		AvailableCredit: money(res.AvailableCredit),
		Replayed:        res.Replayed,
	}
}

type accountPayload struct {
	Account accountDTO `json:"account"`
}

type historyPayload struct {
	Entries []entryDTO `json:"entries"`
}

type driftReportDTO struct {
	AccountID             string `json:"accountId"`
	Consistent            bool   `json:"consistent"`
	Stored                string `json:"stored"`
	Computed              string `json:"computed"`
	FirstDivergingEntryID int64  `json:"firstDivergingEntryId,omitempty"`
	Fence                 int64  `json:"fence"`
	Entries               int    `json:"entries"`
}

func toDriftReportDTO(r reconciliation.DriftReport) driftReportDTO {
	return driftReportDTO{
		AccountID:             r.AccountID.String(),
		Consistent:            r.Consistent,
		Stored:                money(r.Stored),
		Computed:              money(r.Computed),
		FirstDivergingEntryID: r.FirstDivergingEntryID,
		Fence:                 r.Fence,
		Entries:               r.Entries,
	}
}

type verifyPayload struct {
	Report driftReportDTO `json:"report"`
}

type repairPayload struct {
	Report   driftReportDTO `json:"report"`
	Repaired bool           `json:"repaired"`
	Entry    *entryDTO      `json:"entry,omitempty"`
}

type limitRequestDTO struct {
	ID             string     `json:"id"`
	TenantID       uint64     `json:"tenantId"`
	AccountID      string     `json:"accountId"`
	Amount         string     `json:"amount"`
	Reason         string     `json:"reason"`
	Justification  string     `json:"justification,omitempty"`
	RequestedBy    string     `json:"requestedBy,omitempty"`
	Status         string     `json:"status"`
	ApprovedAmount string     `json:"approvedAmount,omitempty"`
	PreviousLimit  string     `json:"previousLimit,omitempty"`
	NewLimit       string     `json:"newLimit,omitempty"`
	AdminNotes     string     `json:"adminNotes,omitempty"`
	DecidedBy      string     `json:"decidedBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
}

func toLimitRequestDTO(r credit.LimitRequest) limitRequestDTO {
	out := limitRequestDTO{
		ID:            r.ID.String(),
		TenantID:      r.TenantID,
		AccountID:     r.AccountID.String(),
		Amount:        money(r.Amount),
		Reason:        r.Reason,
		Justification: r.Justification,
		RequestedBy:   r.RequestedBy,
		Status:        string(r.Status),
		AdminNotes:    r.AdminNotes,
		DecidedBy:     r.DecidedBy,
		CreatedAt:     r.CreatedAt,
	}

	if r.Status == credit.RequestApproved {
		out.ApprovedAmount = money(r.ApprovedAmount)
		out.PreviousLimit = money(r.PreviousLimit)
		out.NewLimit = money(r.NewLimit)
	}

	if !r.DecidedAt.IsZero() {
		at := r.DecidedAt
		out.DecidedAt = &at
	}

	return out
}

type limitRequestPayload struct {
	Request limitRequestDTO `json:"request"`
}

type limitRequestsPayload struct {
	Requests []limitRequestDTO `json:"requests"`
}

type decisionPayload struct {
	Request limitRequestDTO `json:"request"`
	Account accountDTO      `json:"account"`
}
