package api

import (
	"errors"
	"net/http"

	"github.com/fastprodman/creditledger/internal/credit"
)

// mapError picks the HTTP status, wire kind and message for err.
func mapError(err error) (int, string, string) {
	if errors.Is(err, errBadRequest) {
		return http.StatusBadRequest, "bad_request", err.Error()
	}

	kind := credit.KindOf(err)

	switch credit.Classify(err) {
	case credit.ClassClient:
		return clientStatus(err), kind, err.Error()
	case credit.ClassTransient:
		return http.StatusServiceUnavailable, kind, err.Error()
	case credit.ClassIntegrity:
		return http.StatusInternalServerError, kind, "ledger integrity error"
	case credit.ClassUnknown:
	}

	return http.StatusInternalServerError, "internal", "internal error"
}

func clientStatus(err error) int {
	switch {
	case errors.Is(err, credit.ErrAccountNotFound),
		errors.Is(err, credit.ErrLimitRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, credit.ErrTenantMismatch):
		return http.StatusForbidden
	case errors.Is(err, credit.ErrAccountFrozen):
		return http.StatusLocked
	case errors.Is(err, credit.ErrInvalidAmount),
		errors.Is(err, credit.ErrInvalidOrder),
		errors.Is(err, credit.ErrInvalidAdjustment),
		errors.Is(err, credit.ErrInvalidKind),
		errors.Is(err, credit.ErrInvalidAccount),
		errors.Is(err, credit.ErrInvalidLimitRequest):
		return http.StatusUnprocessableEntity
	}

	return http.StatusConflict
}
