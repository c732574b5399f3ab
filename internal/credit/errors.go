package credit

import "errors"

// Client errors: the caller broke a business rule or sent bad input.
var (
	ErrTenantMismatch      = errors.New("tenant mismatch")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrInvalidAccount      = errors.New("invalid account")
	ErrInsufficientCredit  = errors.New("insufficient credit")
	ErrNoSuchHold          = errors.New("no such hold")
	ErrRefundExceedsCharge = errors.New("refund exceeds charge")
	ErrExceedsUsedCredit   = errors.New("amount exceeds used credit")
	ErrIdempotencyConflict = errors.New("idempotency key reused with different parameters")
	ErrAccountFrozen       = errors.New("account frozen")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidOrder        = errors.New("invalid order id")
	ErrInvalidAdjustment   = errors.New("invalid adjustment")
	ErrInvalidKind         = errors.New("invalid entry kind")

	ErrInvalidLimitRequest  = errors.New("invalid limit request")
	ErrLimitRequestNotFound = errors.New("limit request not found")
	ErrLimitRequestDecided  = errors.New("limit request already decided")
	ErrLimitRequestPending  = errors.New("account already has a pending limit request")
)

// Integrity errors: an invariant broke inside the ledger itself.
var (
	ErrNegativeOutstandingHold = errors.New("negative outstanding hold")
	ErrNegativeUsedCredit      = errors.New("used credit would become negative")
	ErrDriftDetected           = errors.New("ledger drift detected")
)

// Transient errors: retry with the same idempotency key.
var (
	ErrLockTimeout            = errors.New("account lock timeout")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrStaleFence             = errors.New("reconciliation fence is stale")
)

// Class groups errors by who has to act on them.
type Class int

const (
	ClassUnknown Class = iota
	ClassClient
	ClassIntegrity
	ClassTransient
)

func (c Class) String() string {
	switch c {
	case ClassClient:
		return "client"
	case ClassIntegrity:
		return "integrity"
	case ClassTransient:
		return "transient"
	case ClassUnknown:
		return "unknown"
	}

	return "unknown"
}

type errorInfo struct {
	err   error
	kind  string
	class Class
}

var taxonomy = []errorInfo{
	{ErrTenantMismatch, "tenant_mismatch", ClassClient},
	{ErrAccountNotFound, "account_not_found", ClassClient},
	{ErrAccountExists, "account_exists", ClassClient},
	{ErrInvalidAccount, "invalid_account", ClassClient},
	{ErrInsufficientCredit, "insufficient_credit", ClassClient},
	{ErrNoSuchHold, "no_such_hold", ClassClient},
	{ErrRefundExceedsCharge, "refund_exceeds_charge", ClassClient},
	{ErrExceedsUsedCredit, "exceeds_used_credit", ClassClient},
	{ErrIdempotencyConflict, "duplicate_idempotency_key_conflict", ClassClient},
	{ErrAccountFrozen, "account_frozen", ClassClient},
	{ErrInvalidAmount, "invalid_amount", ClassClient},
	{ErrInvalidOrder, "invalid_order", ClassClient},
	{ErrInvalidAdjustment, "invalid_adjustment", ClassClient},
	{ErrInvalidKind, "invalid_kind", ClassClient},
	{ErrInvalidLimitRequest, "invalid_limit_request", ClassClient},
	{ErrLimitRequestNotFound, "limit_request_not_found", ClassClient},
	{ErrLimitRequestDecided, "limit_request_decided", ClassClient},
	{ErrLimitRequestPending, "limit_request_pending", ClassClient},
	{ErrNegativeOutstandingHold, "negative_outstanding_hold", ClassIntegrity},
	{ErrNegativeUsedCredit, "negative_used_credit", ClassIntegrity},
	{ErrDriftDetected, "drift_detected", ClassIntegrity},
	{ErrLockTimeout, "lock_timeout", ClassTransient},
	{ErrStorageUnavailable, "storage_unavailable", ClassTransient},
	{ErrConcurrentModification, "concurrent_modification", ClassTransient},
	{ErrStaleFence, "stale_fence", ClassTransient},
}

func lookup(err error) (errorInfo, bool) {
	if err == nil {
		return errorInfo{}, false
	}

	for _, info := range taxonomy {
		if errors.Is(err, info.err) {
			return info, true
		}
	}

	return errorInfo{}, false
}

// Classify reports which class err belongs to. Wrapped errors are unwrapped.
func Classify(err error) Class {
	info, ok := lookup(err)
	if !ok {
		return ClassUnknown
	}

	return info.class
}

// KindOf returns the stable wire name for err, or "internal" for errors
// outside the ledger taxonomy.
func KindOf(err error) string {
	info, ok := lookup(err)
	if !ok {
		return "internal"
	}

	return info.kind
}

// IsRetryable reports whether a caller may retry with the same idempotency key.
func IsRetryable(err error) bool {
	return Classify(err) == ClassTransient
}
