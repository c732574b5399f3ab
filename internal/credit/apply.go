package credit

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Operation is a proposed balance change. Order operations use OrderID and
// Amount; adjustments use Delta, Reason and CreatedBy, with an optional
// external Reference.
type Operation struct {
	Kind           Kind
	OrderID        uint64
	Amount         decimal.Decimal
	Delta          decimal.Decimal
	IdempotencyKey string
	Reason         string
	Reference      string
	CreatedBy      string
	Correction     bool
	At             time.Time
}

// MaxReferenceLength bounds the external reference an adjustment may carry.
const MaxReferenceLength = 255

// Fingerprint identifies the parameters of an idempotent request, so that a
// retry can be told apart from a different request reusing the key.
func (op Operation) Fingerprint() string {
	return fmt.Sprintf("%s|%d|%s", op.Kind, op.OrderID, op.Amount.StringFixed(MoneyScale))
}

// Validate checks the operation in isolation, before any state is read.
func (op Operation) Validate() error {
	switch op.Kind {
	case KindHold, KindRelease, KindCharge, KindRefund:
		if op.OrderID == 0 {
			return fmt.Errorf("%w: %s needs an order", ErrInvalidOrder, op.Kind)
		}

		return ValidateAmount(op.Amount)
	case KindAdjustment:
		if op.Delta.IsZero() {
			return fmt.Errorf("%w: delta must not be zero", ErrInvalidAdjustment)
		}

		if !op.Delta.Equal(op.Delta.Round(MoneyScale)) {
			return fmt.Errorf("%w: at most %d decimals, got %s", ErrInvalidAmount, MoneyScale, op.Delta)
		}

		if strings.TrimSpace(op.Reason) == "" {
			return fmt.Errorf("%w: reason required", ErrInvalidAdjustment)
		}

		if strings.TrimSpace(op.CreatedBy) == "" {
			return fmt.Errorf("%w: created_by required", ErrInvalidAdjustment)
		}

		if utf8.RuneCountInString(op.Reference) > MaxReferenceLength {
			return fmt.Errorf("%w: reference longer than %d", ErrInvalidAdjustment, MaxReferenceLength)
		}

		return nil
	}

	return fmt.Errorf("%w: %q", ErrInvalidKind, op.Kind)
}

// Outcome is the result of a successful Apply.
type Outcome struct {
	Account Account
	Entries []Entry
}

// Primary is the entry that answers the request: the last one written.
func (o Outcome) Primary() Entry {
	return o.Entries[len(o.Entries)-1]
}

type step struct {
	kind   Kind
	effect Effect
	amount decimal.Decimal
	reason string
}

// Apply validates op against the account snapshot and the order's totals and
// returns the new snapshot plus the entries to append, in order. It never
// clamps: any result outside the invariants is a rejection.
//
//nolint:cyclop
func Apply(acc Account, totals OrderTotals, op Operation) (Outcome, error) {
	err := op.Validate()
	if err != nil {
		return Outcome{}, err
	}

	var steps []step

	switch op.Kind {
	case KindHold:
		if acc.Blocked() {
			return Outcome{}, fmt.Errorf("%w: used=%s limit=%s frozen=%t",
				ErrAccountFrozen, acc.UsedCredit, acc.CreditLimit, acc.Frozen)
		}

		if acc.UsedCredit.Add(op.Amount).GreaterThan(acc.CreditLimit) {
			return Outcome{}, fmt.Errorf("%w: requested %s, available %s",
				ErrInsufficientCredit, op.Amount, acc.AvailableCredit())
		}

		steps = append(steps, step{kind: KindHold, effect: EffectIncrease, amount: op.Amount})

	case KindRelease:
		outstanding, err := totals.Outstanding()
		if err != nil {
			return Outcome{}, err
		}

		if outstanding.LessThan(op.Amount) {
			return Outcome{}, fmt.Errorf("%w: order %d has %s outstanding, release %s",
				ErrNoSuchHold, op.OrderID, outstanding, op.Amount)
		}

		err = coveredByUsed(acc, op.Amount)
		if err != nil {
			return Outcome{}, err
		}

		steps = append(steps, step{kind: KindRelease, effect: EffectDecrease, amount: op.Amount})

	case KindCharge:
		if acc.Frozen {
			return Outcome{}, fmt.Errorf("%w: charge refused", ErrAccountFrozen)
		}

		outstanding, err := totals.Outstanding()
		if err != nil {
			return Outcome{}, err
		}

		if outstanding.LessThan(op.Amount) {
			return Outcome{}, fmt.Errorf("%w: order %d has %s outstanding, charge %s",
				ErrNoSuchHold, op.OrderID, outstanding, op.Amount)
		}

		remainder := outstanding.Sub(op.Amount)
		if remainder.IsPositive() {
			err = coveredByUsed(acc, remainder)
			if err != nil {
				return Outcome{}, err
			}

			steps = append(steps, step{
				kind:   KindRelease,
				effect: EffectDecrease,
				amount: remainder,
				reason: ReasonChargeRemainder,
			})
		}

		steps = append(steps, step{kind: KindCharge, effect: EffectNone, amount: op.Amount})

	case KindRefund:
		refundable := totals.Refundable()
		if refundable.LessThan(op.Amount) {
			return Outcome{}, fmt.Errorf("%w: order %d charged %s, refunded %s, refund %s",
				ErrRefundExceedsCharge, op.OrderID, totals.Charged, totals.Refunded, op.Amount)
		}

		err = coveredByUsed(acc, op.Amount)
		if err != nil {
			return Outcome{}, err
		}

		steps = append(steps, step{kind: KindRefund, effect: EffectDecrease, amount: op.Amount})

	case KindAdjustment:
		effect := EffectIncrease
		if op.Delta.IsNegative() {
			effect = EffectDecrease
		}

		if acc.UsedCredit.Add(op.Delta).IsNegative() {
			return Outcome{}, fmt.Errorf("%w: used %s adjusted by %s would go below zero",
				ErrInvalidAdjustment, acc.UsedCredit, op.Delta)
		}

		steps = append(steps, step{kind: KindAdjustment, effect: effect, amount: op.Delta.Abs(), reason: op.Reason})
	}

	return commit(acc, op, steps)
}

// coveredByUsed rejects decreases larger than the used credit left on the
// account, which happens after a negative adjustment wrote credit down.
func coveredByUsed(acc Account, amount decimal.Decimal) error {
	if acc.UsedCredit.LessThan(amount) {
		return fmt.Errorf("%w: used %s, decrease %s", ErrExceedsUsedCredit, acc.UsedCredit, amount)
	}

	return nil
}

func commit(acc Account, op Operation, steps []step) (Outcome, error) {
	next := acc
	entries := make([]Entry, 0, len(steps))

	for i, s := range steps {
		e := Entry{
			ID:            acc.LastEntryID + int64(i) + 1,
			AccountID:     acc.ID,
			TenantID:      acc.TenantID,
			Kind:          s.kind,
			Effect:        s.effect,
			Amount:        s.amount,
			BalanceBefore: next.UsedCredit,
			OrderID:       op.OrderID,
			Reason:        s.reason,
			CreatedBy:     op.CreatedBy,
			CreatedAt:     op.At,
		}
		e.BalanceAfter = e.BalanceBefore.Add(e.SignedEffect())

		if e.BalanceAfter.IsNegative() {
			return Outcome{}, fmt.Errorf("%w: %s of %s on %s", ErrNegativeUsedCredit, e.Kind, e.Amount, e.BalanceBefore)
		}

		next.UsedCredit = e.BalanceAfter
		entries = append(entries, e)
	}

	// The key and the correction flag belong to the entry that answers the call.
	last := &entries[len(entries)-1]
	last.IdempotencyKey = op.IdempotencyKey
	last.Correction = op.Correction
	last.Reference = op.Reference

	if op.Kind != KindAdjustment && next.UsedCredit.GreaterThan(next.CreditLimit) &&
		next.UsedCredit.GreaterThan(acc.UsedCredit) {
		return Outcome{}, fmt.Errorf("%w: used %s over limit %s", ErrInsufficientCredit, next.UsedCredit, next.CreditLimit)
	}

	next.Version = acc.Version + 1
	next.LastEntryID = last.ID
	next.UpdatedAt = op.At

	return Outcome{Account: next, Entries: entries}, nil
}
