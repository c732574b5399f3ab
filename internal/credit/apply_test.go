package credit

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newAccount(limit string) Account {
	return Account{
		ID:          uuid.New(),
		TenantID:    7,
		CreditLimit: d(limit),
		UsedCredit:  decimal.Zero,
	}
}

// book keeps an account and its history together, the way the engine does.
type book struct {
	acc     Account
	entries []Entry
}

func (b *book) apply(t *testing.T, op Operation) (Outcome, error) {
	t.Helper()

	op.At = time.Unix(1_700_000_000, 0)
	out, err := Apply(b.acc, TotalsFor(b.entries, op.OrderID), op)
	if err != nil {
		return out, err
	}

	b.acc = out.Account
	b.entries = append(b.entries, out.Entries...)

	return out, nil
}

func hold(order uint64, amount string) Operation {
	return Operation{Kind: KindHold, OrderID: order, Amount: d(amount)}
}

func release(order uint64, amount string) Operation {
	return Operation{Kind: KindRelease, OrderID: order, Amount: d(amount)}
}

func charge(order uint64, amount string) Operation {
	return Operation{Kind: KindCharge, OrderID: order, Amount: d(amount)}
}

func refund(order uint64, amount string) Operation {
	return Operation{Kind: KindRefund, OrderID: order, Amount: d(amount)}
}

func adjust(delta string) Operation {
	return Operation{Kind: KindAdjustment, Delta: d(delta), Reason: "manual", CreatedBy: "admin@example.gr"}
}

func TestApply_HoldChargeRefund(t *testing.T) {
	t.Parallel()

	b := &book{acc: newAccount("1000")}

	out, err := b.apply(t, hold(1, "300"))
	require.NoError(t, err)
	assert.True(t, out.Account.AvailableCredit().Equal(d("700")))

	out, err = b.apply(t, charge(1, "200"))
	require.NoError(t, err)
	require.Len(t, out.Entries, 2, "implicit release + charge")
	assert.Equal(t, KindRelease, out.Entries[0].Kind)
	assert.True(t, out.Entries[0].Amount.Equal(d("100")))
	assert.Equal(t, ReasonChargeRemainder, out.Entries[0].Reason)
	assert.Equal(t, KindCharge, out.Primary().Kind)
	assert.True(t, out.Account.UsedCredit.Equal(d("200")))
	assert.True(t, out.Account.AvailableCredit().Equal(d("800")))

	out, err = b.apply(t, refund(1, "50"))
	require.NoError(t, err)
	assert.True(t, out.Account.UsedCredit.Equal(d("150")))

	// 150 + 900 > 1000.
	_, err = b.apply(t, Operation{Kind: KindHold, OrderID: 2, Amount: d("900"), IdempotencyKey: "a"})
	require.ErrorIs(t, err, ErrInsufficientCredit)
	assert.True(t, b.acc.UsedCredit.Equal(d("150")))

	// Order 1 has nothing outstanding after the charge.
	_, err = b.apply(t, release(1, "50"))
	require.ErrorIs(t, err, ErrNoSuchHold)

	assert.Equal(t, int64(4), b.acc.LastEntryID)
	assert.Equal(t, int64(3), b.acc.Version)
}

func TestApply_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   []Operation
		frozen  bool
		op      Operation
		wantErr error
	}{
		{name: "hold_exact_limit_ok", op: hold(1, "1000")},
		{name: "hold_over_limit", op: hold(1, "1000.01"), wantErr: ErrInsufficientCredit},
		{name: "hold_zero_amount", op: hold(1, "0"), wantErr: ErrInvalidAmount},
		{name: "hold_negative_amount", op: hold(1, "-5"), wantErr: ErrInvalidAmount},
		{name: "hold_three_decimals", op: hold(1, "1.005"), wantErr: ErrInvalidAmount},
		{name: "hold_without_order", op: hold(0, "10"), wantErr: ErrInvalidOrder},
		{name: "hold_on_frozen_flag", frozen: true, op: hold(1, "10"), wantErr: ErrAccountFrozen},
		{
			name:    "hold_after_over_limit_adjustment",
			setup:   []Operation{adjust("1200")},
			op:      hold(1, "1"),
			wantErr: ErrAccountFrozen,
		},
		{name: "release_without_hold", op: release(9, "1"), wantErr: ErrNoSuchHold},
		{
			name:    "release_more_than_held",
			setup:   []Operation{hold(1, "100")},
			op:      release(1, "100.01"),
			wantErr: ErrNoSuchHold,
		},
		{
			name:  "release_partial",
			setup: []Operation{hold(1, "100")},
			op:    release(1, "40"),
		},
		{
			name:    "release_other_order",
			setup:   []Operation{hold(1, "100")},
			op:      release(2, "1"),
			wantErr: ErrNoSuchHold,
		},
		{
			name:    "charge_more_than_held",
			setup:   []Operation{hold(1, "100")},
			op:      charge(1, "101"),
			wantErr: ErrNoSuchHold,
		},
		{
			name:    "charge_twice",
			setup:   []Operation{hold(1, "100"), charge(1, "60")},
			op:      charge(1, "10"),
			wantErr: ErrNoSuchHold,
		},
		{
			name:   "release_allowed_when_frozen",
			setup:  []Operation{hold(1, "100")},
			frozen: true,
			op:     release(1, "100"),
		},
		{
			name:    "charge_refused_when_frozen",
			setup:   []Operation{hold(1, "100")},
			frozen:  true,
			op:      charge(1, "100"),
			wantErr: ErrAccountFrozen,
		},
		{
			name:    "refund_without_charge",
			setup:   []Operation{hold(1, "100")},
			op:      refund(1, "1"),
			wantErr: ErrRefundExceedsCharge,
		},
		{
			name:    "refund_cumulative_cap",
			setup:   []Operation{hold(1, "100"), charge(1, "100"), refund(1, "70")},
			op:      refund(1, "30.01"),
			wantErr: ErrRefundExceedsCharge,
		},
		{
			name:  "refund_full",
			setup: []Operation{hold(1, "100"), charge(1, "100"), refund(1, "70")},
			op:    refund(1, "30"),
		},
		{name: "adjustment_zero", op: adjust("0"), wantErr: ErrInvalidAdjustment},
		{name: "adjustment_below_zero", op: adjust("-0.01"), wantErr: ErrInvalidAdjustment},
		{
			name:    "adjustment_without_author",
			op:      Operation{Kind: KindAdjustment, Delta: d("5"), Reason: "x"},
			wantErr: ErrInvalidAdjustment,
		},
		{
			name:    "adjustment_without_reason",
			op:      Operation{Kind: KindAdjustment, Delta: d("5"), CreatedBy: "x"},
			wantErr: ErrInvalidAdjustment,
		},
		{
			name: "adjustment_reference_too_long",
			op: Operation{
				Kind: KindAdjustment, Delta: d("5"), Reason: "x", CreatedBy: "x",
				Reference: strings.Repeat("r", MaxReferenceLength+1),
			},
			wantErr: ErrInvalidAdjustment,
		},
		{
			name: "adjustment_reference_at_bound",
			op: Operation{
				Kind: KindAdjustment, Delta: d("5"), Reason: "x", CreatedBy: "x",
				Reference: strings.Repeat("ρ", MaxReferenceLength),
			},
		},
		{name: "adjustment_over_limit_allowed", op: adjust("1500")},
		{name: "unknown_kind", op: Operation{Kind: "loan", OrderID: 1, Amount: d("1")}, wantErr: ErrInvalidKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := &book{acc: newAccount("1000")}
			for _, op := range tt.setup {
				_, err := b.apply(t, op)
				require.NoError(t, err, "setup %s", op.Kind)
			}

			b.acc.Frozen = tt.frozen
			before := b.acc

			_, err := b.apply(t, tt.op)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, b.acc, "rejected operation must not change the snapshot")

				return
			}

			require.NoError(t, err)
			assert.Equal(t, before.Version+1, b.acc.Version)
		})
	}
}

func TestApply_NegativeOutstandingIsIntegrityError(t *testing.T) {
	t.Parallel()

	acc := newAccount("1000")
	acc.UsedCredit = d("50")
	totals := OrderTotals{Held: d("50"), Released: d("80")}

	_, err := Apply(acc, totals, release(1, "1"))
	require.ErrorIs(t, err, ErrNegativeOutstandingHold)
	assert.Equal(t, ClassIntegrity, Classify(err))
}

// A write-down can leave used credit below what an order still holds or was
// charged. Decreases past zero are the caller's problem, not corruption.
func TestApply_DecreaseBeyondUsedCreditAfterWriteDown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup []Operation
		op    Operation
	}{
		{
			name:  "refund_after_charge_written_down",
			setup: []Operation{hold(1, "100"), charge(1, "100"), adjust("-100")},
			op:    refund(1, "50"),
		},
		{
			name:  "release_after_hold_written_down",
			setup: []Operation{hold(1, "100"), adjust("-100")},
			op:    release(1, "100"),
		},
		{
			name:  "charge_remainder_after_hold_written_down",
			setup: []Operation{hold(1, "100"), adjust("-80")},
			op:    charge(1, "40"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := &book{acc: newAccount("1000")}
			for _, op := range tt.setup {
				_, err := b.apply(t, op)
				require.NoError(t, err)
			}

			before := b.acc

			_, err := b.apply(t, tt.op)
			require.ErrorIs(t, err, ErrExceedsUsedCredit)
			assert.Equal(t, ClassClient, Classify(err))
			assert.Equal(t, "exceeds_used_credit", KindOf(err))
			assert.Equal(t, before, b.acc)
		})
	}

	// Within what is left the decrease goes through.
	b := &book{acc: newAccount("1000")}
	for _, op := range []Operation{hold(1, "100"), charge(1, "100"), adjust("-70")} {
		_, err := b.apply(t, op)
		require.NoError(t, err)
	}

	out, err := b.apply(t, refund(1, "30"))
	require.NoError(t, err)
	assert.True(t, out.Account.UsedCredit.IsZero())
}

func TestApply_EntriesCarryKeyAndChain(t *testing.T) {
	t.Parallel()

	b := &book{acc: newAccount("1000")}
	_, err := b.apply(t, hold(5, "120"))
	require.NoError(t, err)

	op := charge(5, "100")
	op.IdempotencyKey = "ship-5"
	op.CreatedBy = "orders"

	out, err := b.apply(t, op)
	require.NoError(t, err)
	require.Len(t, out.Entries, 2)

	assert.Empty(t, out.Entries[0].IdempotencyKey)
	assert.Equal(t, "ship-5", out.Primary().IdempotencyKey)
	assert.Equal(t, int64(2), out.Entries[0].ID)
	assert.Equal(t, int64(3), out.Primary().ID)
	assert.True(t, out.Entries[0].BalanceAfter.Equal(out.Primary().BalanceBefore))

	for _, e := range out.Entries {
		require.NoError(t, e.Check())
		assert.Equal(t, uint64(5), e.OrderID)
		assert.Equal(t, b.acc.ID, e.AccountID)
	}
}

func TestApply_AdjustmentCarriesReference(t *testing.T) {
	t.Parallel()

	b := &book{acc: newAccount("1000")}

	op := adjust("-0.50")
	op.Delta = d("12.40")
	op.Reference = "INV-2024-0042"

	out, err := b.apply(t, op)
	require.NoError(t, err)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "INV-2024-0042", out.Primary().Reference)
	assert.Equal(t, "manual", out.Primary().Reason)
}

func TestApply_Fingerprint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, hold(1, "10").Fingerprint(), hold(1, "10.00").Fingerprint())
	assert.NotEqual(t, hold(1, "10").Fingerprint(), hold(1, "10.01").Fingerprint())
	assert.NotEqual(t, hold(1, "10").Fingerprint(), release(1, "10").Fingerprint())
	assert.NotEqual(t, hold(1, "10").Fingerprint(), hold(2, "10").Fingerprint())
}

// Random operation sequences must keep every invariant after each commit.
func TestApply_RandomSequencesPreserveInvariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	amounts := []string{"0.01", "5", "12.50", "40", "99.99", "250"}

	for run := 0; run < 50; run++ {
		b := &book{acc: newAccount("500")}

		for i := 0; i < 200; i++ {
			order := uint64(rng.Intn(6) + 1)
			amount := amounts[rng.Intn(len(amounts))]

			var op Operation
			switch rng.Intn(9) {
			case 0, 1, 2:
				op = hold(order, amount)
			case 3, 4:
				op = release(order, amount)
			case 5, 6:
				op = charge(order, amount)
			case 7:
				op = refund(order, amount)
			default:
				if rng.Intn(2) == 0 {
					op = adjust(amount)
				} else {
					op = adjust("-" + amount)
				}
			}

			before := b.acc
			_, err := b.apply(t, op)
			if err != nil {
				require.Equal(t, ClassClient, Classify(err), "op %d: %v", i, err)
				require.Equal(t, before, b.acc)

				continue
			}

			if op.Kind != KindAdjustment && b.acc.UsedCredit.GreaterThan(before.UsedCredit) {
				require.False(t, b.acc.OverLimit(), "op %d pushed used over limit", i)
			}

			require.False(t, b.acc.UsedCredit.IsNegative())

			replay := Replay(b.entries)
			require.Zero(t, replay.FirstDivergingEntryID)
			require.True(t, replay.Computed.Equal(b.acc.UsedCredit), "replay after op %d", i)

			for o := uint64(1); o <= 6; o++ {
				totals := TotalsFor(b.entries, o)
				_, err := totals.Outstanding()
				require.NoError(t, err)
				require.False(t, totals.Refundable().IsNegative())
			}
		}
	}
}
