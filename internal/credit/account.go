// Package credit holds the B2B credit ledger domain: accounts, entries, the
// pure Apply transition and history replay. Nothing here performs I/O.
package credit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCreditLimit is granted when an account is opened without a limit.
var DefaultCreditLimit = decimal.RequireFromString("5000.00")

// MoneyScale is the number of fractional digits carried by every amount.
const MoneyScale = 2

// Account is the credit snapshot of one tenant-scoped business customer.
type Account struct {
	ID                 uuid.UUID
	TenantID           uint64
	BusinessCustomerID uint64
	CreditLimit        decimal.Decimal
	UsedCredit         decimal.Decimal
	Version            int64
	LastEntryID        int64
	Frozen             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Headroom is limit minus used, not clamped.
func (a Account) Headroom() decimal.Decimal {
	return a.CreditLimit.Sub(a.UsedCredit)
}

// AvailableCredit is the display value of Headroom, clamped at zero.
func (a Account) AvailableCredit() decimal.Decimal {
	h := a.Headroom()
	if h.IsNegative() {
		return decimal.Zero
	}

	return h
}

// OverLimit reports the frozen state produced by an adjustment that pushed
// used credit above the limit.
func (a Account) OverLimit() bool {
	return a.UsedCredit.GreaterThan(a.CreditLimit)
}

// Blocked reports whether new holds must be refused.
func (a Account) Blocked() bool {
	return a.Frozen || a.OverLimit()
}

// CheckTenant fails with ErrTenantMismatch when the account belongs to a
// different tenant than the caller claims.
func (a Account) CheckTenant(tenantID uint64) error {
	if a.TenantID != tenantID {
		return fmt.Errorf("%w: account %s", ErrTenantMismatch, a.ID)
	}

	return nil
}

// ValidateAmount accepts strictly positive amounts with at most two decimals.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: must be > 0, got %s", ErrInvalidAmount, amount)
	}

	if !amount.Equal(amount.Round(MoneyScale)) {
		return fmt.Errorf("%w: at most %d decimals, got %s", ErrInvalidAmount, MoneyScale, amount)
	}

	return nil
}

// ValidateLimit accepts non-negative limits with at most two decimals.
func ValidateLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return fmt.Errorf("%w: credit limit must be >= 0, got %s", ErrInvalidAmount, limit)
	}

	if !limit.Equal(limit.Round(MoneyScale)) {
		return fmt.Errorf("%w: at most %d decimals, got %s", ErrInvalidAmount, MoneyScale, limit)
	}

	return nil
}
