package credit

import (
	"fmt"
	"strings"
)

// Kind is the business reason of a ledger entry.
type Kind string

const (
	KindHold       Kind = "hold"
	KindRelease    Kind = "release"
	KindCharge     Kind = "charge"
	KindRefund     Kind = "refund"
	KindAdjustment Kind = "adjustment"
)

// Kinds lists every entry kind in a fixed order.
var Kinds = []Kind{KindHold, KindRelease, KindCharge, KindRefund, KindAdjustment}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}

	return k, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindHold, KindRelease, KindCharge, KindRefund, KindAdjustment:
		return true
	}

	return false
}

// IsOrderKind reports whether entries of this kind belong to an order.
func (k Kind) IsOrderKind() bool {
	switch k {
	case KindHold, KindRelease, KindCharge, KindRefund:
		return true
	case KindAdjustment:
		return false
	}

	return false
}

// fixedEffect returns the effect implied by the kind. Adjustments have no
// fixed effect; theirs comes from the sign of the delta.
func (k Kind) fixedEffect() (Effect, bool) {
	switch k {
	case KindHold:
		return EffectIncrease, true
	case KindRelease, KindRefund:
		return EffectDecrease, true
	case KindCharge:
		return EffectNone, true
	case KindAdjustment:
		return "", false
	}

	return "", false
}

// Effect is the direction in which an entry moves used credit.
type Effect string

const (
	EffectIncrease Effect = "increase"
	EffectDecrease Effect = "decrease"
	EffectNone     Effect = "none"
)

func ParseEffect(s string) (Effect, error) {
	e := Effect(s)
	switch e {
	case EffectIncrease, EffectDecrease, EffectNone:
		return e, nil
	}

	return "", fmt.Errorf("invalid effect %q", s)
}

// Sign is +1, -1 or 0.
func (e Effect) Sign() int {
	switch e {
	case EffectIncrease:
		return 1
	case EffectDecrease:
		return -1
	case EffectNone:
		return 0
	}

	return 0
}

// ValidFor reports whether the effect is allowed for entries of kind k.
func (e Effect) ValidFor(k Kind) bool {
	fixed, ok := k.fixedEffect()
	if ok {
		return e == fixed
	}

	return e == EffectIncrease || e == EffectDecrease
}
