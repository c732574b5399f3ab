package credit

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bounds of a credit increase request.
var (
	MinLimitIncrease = decimal.NewFromInt(100)
	MaxLimitIncrease = decimal.NewFromInt(100000)
)

const (
	MaxRequestReasonLength = 1000
	MaxJustificationLength = 2000
	MaxAdminNotesLength    = 1000
)

// RequestStatus is where a limit request stands in its review.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(s); st {
	case RequestPending, RequestApproved, RequestRejected:
		return st, nil
	}

	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidLimitRequest, s)
}

// Decision is an administrator's answer to a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch dec := Decision(s); dec {
	case DecisionApprove, DecisionReject:
		return dec, nil
	}

	return "", fmt.Errorf("%w: action must be approve or reject, got %q", ErrInvalidLimitRequest, s)
}

// LimitRequest asks for the credit limit of an account to be raised by Amount.
// PreviousLimit and NewLimit are filled in on approval.
type LimitRequest struct {
	ID             uuid.UUID
	TenantID       uint64
	AccountID      uuid.UUID
	Amount         decimal.Decimal
	Reason         string
	Justification  string
	RequestedBy    string
	Status         RequestStatus
	ApprovedAmount decimal.Decimal
	PreviousLimit  decimal.Decimal
	NewLimit       decimal.Decimal
	AdminNotes     string
	DecidedBy      string
	CreatedAt      time.Time
	DecidedAt      time.Time
}

// Validate checks a new request before it is stored.
func (r LimitRequest) Validate() error {
	err := ValidateAmount(r.Amount)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLimitRequest, err)
	}

	if r.Amount.LessThan(MinLimitIncrease) || r.Amount.GreaterThan(MaxLimitIncrease) {
		return fmt.Errorf("%w: amount must be between %s and %s, got %s",
			ErrInvalidLimitRequest, MinLimitIncrease, MaxLimitIncrease, r.Amount)
	}

	if strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("%w: reason required", ErrInvalidLimitRequest)
	}

	if utf8.RuneCountInString(r.Reason) > MaxRequestReasonLength {
		return fmt.Errorf("%w: reason longer than %d", ErrInvalidLimitRequest, MaxRequestReasonLength)
	}

	if utf8.RuneCountInString(r.Justification) > MaxJustificationLength {
		return fmt.Errorf("%w: justification longer than %d", ErrInvalidLimitRequest, MaxJustificationLength)
	}

	return nil
}

// Decide records dec on a pending request. approved is the increase granted
// and is ignored on rejection. The limit fields are left to the caller, who
// holds the account.
func (r LimitRequest) Decide(dec Decision, approved decimal.Decimal, notes, by string, at time.Time) (LimitRequest, error) {
	if r.Status != RequestPending {
		return LimitRequest{}, fmt.Errorf("%w: request %s is %s", ErrLimitRequestDecided, r.ID, r.Status)
	}

	if strings.TrimSpace(by) == "" {
		return LimitRequest{}, fmt.Errorf("%w: decided_by required", ErrInvalidLimitRequest)
	}

	if utf8.RuneCountInString(notes) > MaxAdminNotesLength {
		return LimitRequest{}, fmt.Errorf("%w: notes longer than %d", ErrInvalidLimitRequest, MaxAdminNotesLength)
	}

	switch dec {
	case DecisionApprove:
		err := ValidateAmount(approved)
		if err != nil {
			return LimitRequest{}, fmt.Errorf("%w: approved amount: %w", ErrInvalidLimitRequest, err)
		}

		r.Status = RequestApproved
		r.ApprovedAmount = approved
	case DecisionReject:
		r.Status = RequestRejected
		r.ApprovedAmount = decimal.Zero
	default:
		return LimitRequest{}, fmt.Errorf("%w: unknown action %q", ErrInvalidLimitRequest, dec)
	}

	r.AdminNotes = notes
	r.DecidedBy = by
	r.DecidedAt = at

	return r, nil
}
