package api

import (
	"net/http"
	"strconv"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/repos/limitrequests"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultRequestsLimit = 15
	maxRequestsLimit     = 100
)

// RequestIncreaseHandler handles POST /accounts/{accountId}/limit-requests
func (h *HandlerProvider) RequestIncreaseHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, accountID, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body increaseRequest

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

	req, err := h.ledger.RequestIncrease(r.Context(), ledger.IncreaseRequest{
		TenantID:      tenantID,
		AccountID:     accountID,
		Amount:        amount,
		Reason:        body.Reason,
		Justification: body.Justification,
		RequestedBy:   body.RequestedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/limit-requests/"+req.ID.String())
	writeOK(w, http.StatusCreated, limitRequestPayload{Request: toLimitRequestDTO(req)})
}

// ListRequestsHandler handles GET /limit-requests?status=&accountId=&limit=&offset=
func (h *HandlerProvider) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := parseTenant(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	f, err := parseRequestFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	f.TenantID = tenantID

	list, err := h.ledger.ListRequests(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]limitRequestDTO, 0, len(list))
	for _, req := range list {
		out = append(out, toLimitRequestDTO(req))
	}

	writeOK(w, http.StatusOK, limitRequestsPayload{Requests: out})
}

func parseRequestFilter(r *http.Request) (limitrequests.Filter, error) {
	q := r.URL.Query()
	f := limitrequests.Filter{Limit: defaultRequestsLimit}

	if raw := q.Get("status"); raw != "" {
		st, err := credit.ParseRequestStatus(raw)
		if err != nil {
			return limitrequests.Filter{}, err
		}

		f.Status = st
	}

	if raw := q.Get("accountId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return limitrequests.Filter{}, badRequest("invalid accountId")
		}

		f.AccountID = id
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}

		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return limitrequests.Filter{}, badRequest("%s must be a non-negative integer", p.name)
		}

		*p.dst = n
	}

	if f.Limit == 0 || f.Limit > maxRequestsLimit {
		f.Limit = maxRequestsLimit
	}

	return f, nil
}

// GetRequestHandler handles GET /limit-requests/{requestId}
func (h *HandlerProvider) GetRequestHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, requestID, err := requestScope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	req, err := h.ledger.LimitRequest(r.Context(), tenantID, requestID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, limitRequestPayload{Request: toLimitRequestDTO(req)})
}

// DecideRequestHandler handles POST /limit-requests/{requestId}/decision
func (h *HandlerProvider) DecideRequestHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, requestID, err := requestScope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body decisionRequest

	err = decode(w, r, &body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dec, err := credit.ParseDecision(body.Action)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var approved decimal.Decimal
	if dec == credit.DecisionApprove {
		approved, err = parseMoney("approvedAmount", body.ApprovedAmount)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	out, err := h.ledger.DecideRequest(r.Context(), ledger.DecisionRequest{
		TenantID:       tenantID,
		RequestID:      requestID,
		Decision:       dec,
		ApprovedAmount: approved,
		Notes:          body.Notes,
		DecidedBy:      body.DecidedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, decisionPayload{
		Request: toLimitRequestDTO(out.Request),
		Account: toAccountDTO(out.Account),
	})
}

func requestScope(r *http.Request) (uint64, uuid.UUID, error) {
	tenantID, err := parseTenant(r)
	if err != nil {
		return 0, uuid.Nil, err
	}

	id, err := uuid.Parse(chi.URLParam(r, "requestId"))
	if err != nil {
		return 0, uuid.Nil, badRequest("invalid requestId in path")
	}

	return tenantID, id, nil
}
