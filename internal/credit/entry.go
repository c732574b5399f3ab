package credit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReasonReconciliation tags the correction entries written by reconciliation.
const ReasonReconciliation = "reconciliation"

// ReasonChargeRemainder tags the release written implicitly by a charge.
const ReasonChargeRemainder = "charge remainder"

// Entry is one immutable row of an account's history.
type Entry struct {
	ID             int64
	AccountID      uuid.UUID
	TenantID       uint64
	Kind           Kind
	Effect         Effect
	Amount         decimal.Decimal
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	OrderID        uint64
	IdempotencyKey string
	Reason         string
	Reference      string
	Correction     bool
	CreatedBy      string
	CreatedAt      time.Time
}

// SignedEffect is the change this entry makes to used credit.
func (e Entry) SignedEffect() decimal.Decimal {
	switch e.Effect.Sign() {
	case 1:
		return e.Amount
	case -1:
		return e.Amount.Neg()
	}

	return decimal.Zero
}

// Check validates the entry on its own: a known kind, an effect that fits the
// kind, a positive amount and a before/after pair that matches the effect.
func (e Entry) Check() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("entry %d: %w: %q", e.ID, ErrInvalidKind, e.Kind)
	}

	if !e.Effect.ValidFor(e.Kind) {
		return fmt.Errorf("entry %d: effect %q not valid for %s", e.ID, e.Effect, e.Kind)
	}

	if !e.Amount.IsPositive() {
		return fmt.Errorf("entry %d: %w: %s", e.ID, ErrInvalidAmount, e.Amount)
	}

	if !e.BalanceAfter.Sub(e.BalanceBefore).Equal(e.SignedEffect()) {
		return fmt.Errorf("entry %d: balance %s -> %s does not match %s %s",
			e.ID, e.BalanceBefore, e.BalanceAfter, e.Effect, e.Amount)
	}

	return nil
}

// OrderTotals are the per-kind sums of an order's entries.
type OrderTotals struct {
	Held     decimal.Decimal
	Released decimal.Decimal
	Charged  decimal.Decimal
	Refunded decimal.Decimal
}

// Add folds one entry of the order into the totals.
func (t OrderTotals) Add(kind Kind, amount decimal.Decimal) OrderTotals {
	switch kind {
	case KindHold:
		t.Held = t.Held.Add(amount)
	case KindRelease:
		t.Released = t.Released.Add(amount)
	case KindCharge:
		t.Charged = t.Charged.Add(amount)
	case KindRefund:
		t.Refunded = t.Refunded.Add(amount)
	case KindAdjustment:
	}

	return t
}

// Outstanding is the part of the order's holds not yet released or charged.
// A negative value means the ledger is corrupt.
func (t OrderTotals) Outstanding() (decimal.Decimal, error) {
	out := t.Held.Sub(t.Released).Sub(t.Charged)
	if out.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: held=%s released=%s charged=%s",
			ErrNegativeOutstandingHold, t.Held, t.Released, t.Charged)
	}

	return out, nil
}

// Refundable is what may still be refunded on the order.
func (t OrderTotals) Refundable() decimal.Decimal {
	return t.Charged.Sub(t.Refunded)
}
