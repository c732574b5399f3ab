package credit

import "github.com/shopspring/decimal"

// ReplayResult is what an account's history says its used credit is.
type ReplayResult struct {
	Computed              decimal.Decimal
	FirstDivergingEntryID int64
	LastEntryID           int64
	Entries               int
}

// Replay recomputes used credit from entries sorted by id, starting at zero.
//
// Ordinary entries add their signed effect and must chain: each one's
// BalanceBefore equals the running value and its own before/after pair
// matches its effect. Correction entries repair the stored snapshot, not the
// history, so they add nothing and must land on the running value.
//
// FirstDivergingEntryID is the first entry that breaks the chain, 0 if none.
func Replay(entries []Entry) ReplayResult {
	res := ReplayResult{Computed: decimal.Zero}

	var prevID int64

	for _, e := range entries {
		res.Entries++
		res.LastEntryID = e.ID

		broken := e.ID != prevID+1 || e.Check() != nil
		prevID = e.ID

		if e.Correction {
			if broken || !e.BalanceAfter.Equal(res.Computed) {
				res.markDivergence(e.ID)
			}

			continue
		}

		if broken || !e.BalanceBefore.Equal(res.Computed) {
			res.markDivergence(e.ID)
		}

		res.Computed = res.Computed.Add(e.SignedEffect())
	}

	return res
}

func (r *ReplayResult) markDivergence(id int64) {
	if r.FirstDivergingEntryID == 0 {
		r.FirstDivergingEntryID = id
	}
}

// TotalsFor folds the entries of one order into OrderTotals.
func TotalsFor(entries []Entry, orderID uint64) OrderTotals {
	t := OrderTotals{}
	for _, e := range entries {
		if e.OrderID == orderID {
			t = t.Add(e.Kind, e.Amount)
		}
	}

	return t
}
