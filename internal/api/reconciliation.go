package api

import "net/http"

// VerifyHandler handles GET /accounts/{accountId}/reconciliation
func (h *HandlerProvider) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, accountID, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.recon.Verify(r.Context(), tenantID, accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, verifyPayload{Report: toDriftReportDTO(report)})
}

// RepairHandler handles POST /accounts/{accountId}/reconciliation
func (h *HandlerProvider) RepairHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, accountID, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	body := repairRequest{CreatedBy: "reconciliation"}

	// The body is optional.
	if r.ContentLength > 0 {
		err = decode(w, r, &body)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	out, err := h.recon.Repair(r.Context(), tenantID, accountID, body.CreatedBy)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload := repairPayload{Report: toDriftReportDTO(out.Report), Repaired: out.Repaired}
	if out.Repaired {
		e := toEntryDTO(out.Result.Entry)
		payload.Entry = &e
	}

	writeOK(w, http.StatusOK, payload)
}
