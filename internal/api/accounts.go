package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/repos/entries"
	"github.com/fastprodman/creditledger/internal/services/ledger"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// OpenAccountHandler handles POST /accounts
func (h *HandlerProvider) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := parseTenant(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body openAccountRequest

	err = decode(w, r, &body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	req := ledger.OpenAccountRequest{
		TenantID:           tenantID,
		BusinessCustomerID: body.BusinessCustomerID,
		CreatedBy:          body.CreatedBy,
	}

	if body.CreditLimit != nil {
		limit, err := parseMoney("creditLimit", *body.CreditLimit)
		if err != nil {
			writeError(w, r, err)
			return
		}

		req.CreditLimit = &limit
	}

	acc, err := h.ledger.OpenAccount(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/accounts/"+acc.ID.String())
	writeOK(w, http.StatusCreated, accountPayload{Account: toAccountDTO(acc)})
}

// StatusHandler handles GET /accounts/{accountId}
func (h *HandlerProvider) StatusHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, accountID, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	acc, err := h.ledger.Status(r.Context(), tenantID, accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, accountPayload{Account: toAccountDTO(acc)})
}

// HistoryHandler handles GET /accounts/{accountId}/entries?kind=&from=&to=&limit=&offset=
func (h *HandlerProvider) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, accountID, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	es, err := h.ledger.History(r.Context(), tenantID, accountID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, historyPayload{Entries: toEntryDTOs(es)})
}

func parseFilter(r *http.Request) (entries.Filter, error) {
	q := r.URL.Query()
	f := entries.Filter{Limit: defaultHistoryLimit}

	if raw := q.Get("kind"); raw != "" {
		k, err := credit.ParseKind(raw)
		if err != nil {
			return entries.Filter{}, err
		}

		f.Kind = k
	}

	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}

		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return entries.Filter{}, badRequest("%s must be RFC3339", p.name)
		}

		*p.dst = t
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
			return entries.Filter{}, badRequest("%s must be a non-negative integer", p.name)
		}

		*p.dst = n
	}

	if f.Limit == 0 || f.Limit > maxHistoryLimit {
		f.Limit = maxHistoryLimit
	}

	return f, nil
}

// SetLimitHandler handles PUT /accounts/{accountId}/limit
func (h *HandlerProvider) SetLimitHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, accountID, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body limitRequest

	err = decode(w, r, &body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit, err := parseMoney("creditLimit", body.CreditLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	acc, err := h.ledger.SetCreditLimit(r.Context(), tenantID, accountID, limit, body.UpdatedBy)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, accountPayload{Account: toAccountDTO(acc)})
}

// SetFrozenHandler handles PUT /accounts/{accountId}/frozen
func (h *HandlerProvider) SetFrozenHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, accountID, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body frozenRequest

	err = decode(w, r, &body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if body.Frozen == nil {
		writeError(w, r, badRequest("frozen required"))
		return
	}

	acc, err := h.ledger.SetFrozen(r.Context(), tenantID, accountID, *body.Frozen, body.UpdatedBy)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, accountPayload{Account: toAccountDTO(acc)})
}
