package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/services/reconciliation"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(credit.MoneyScale)
}

func printAccount(w io.Writer, a credit.Account) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "account\t%s\n", a.ID)
	fmt.Fprintf(tw, "tenant\t%d\n", a.TenantID)
	fmt.Fprintf(tw, "customer\t%d\n", a.BusinessCustomerID)
	fmt.Fprintf(tw, "limit\t%s\n", money(a.CreditLimit))
	fmt.Fprintf(tw, "used\t%s\n", money(a.UsedCredit))
	fmt.Fprintf(tw, "available\t%s\n", money(a.AvailableCredit()))
	fmt.Fprintf(tw, "frozen\t%t\n", a.Frozen)
	fmt.Fprintf(tw, "over limit\t%t\n", a.OverLimit())
	fmt.Fprintf(tw, "version\t%d\n", a.Version)
	fmt.Fprintf(tw, "last entry\t%d\n", a.LastEntryID)
	_ = tw.Flush()
}

func printEntries(w io.Writer, es []credit.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tAMOUNT\tBEFORE\tAFTER\tORDER\tREASON\tBY\tAT")

	for _, e := range es {
		order := "-"
		if e.OrderID != 0 {
			order = fmt.Sprint(e.OrderID)
		}

		reason := e.Reason
		if e.Reference != "" {
			reason += " [" + e.Reference + "]"
		}

		if e.Correction {
			reason += " (correction)"
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Kind, money(e.Amount), money(e.BalanceBefore), money(e.BalanceAfter),
			order, reason, e.CreatedBy, e.CreatedAt.Format(time.RFC3339))
	}

	_ = tw.Flush()
}

func printReport(w io.Writer, r reconciliation.DriftReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "account\t%s\n", r.AccountID)
	fmt.Fprintf(tw, "consistent\t%t\n", r.Consistent)
	fmt.Fprintf(tw, "stored\t%s\n", money(r.Stored))
	fmt.Fprintf(tw, "computed\t%s\n", money(r.Computed))
	fmt.Fprintf(tw, "delta\t%s\n", money(r.Delta()))
	fmt.Fprintf(tw, "entries\t%d (fence %d)\n", r.Entries, r.Fence)

	if r.FirstDivergingEntryID != 0 {
		fmt.Fprintf(tw, "first diverging entry\t%d\n", r.FirstDivergingEntryID)
	}

	_ = tw.Flush()
}

func printRequest(w io.Writer, r credit.LimitRequest) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "request\t%s\n", r.ID)
	fmt.Fprintf(tw, "account\t%s\n", r.AccountID)
	fmt.Fprintf(tw, "status\t%s\n", r.Status)
	fmt.Fprintf(tw, "amount\t%s\n", money(r.Amount))
	fmt.Fprintf(tw, "reason\t%s\n", r.Reason)

	if r.Justification != "" {
		fmt.Fprintf(tw, "justification\t%s\n", r.Justification)
	}

	fmt.Fprintf(tw, "requested by\t%s\n", r.RequestedBy)
	fmt.Fprintf(tw, "requested at\t%s\n", r.CreatedAt.Format(time.RFC3339))

	if r.Status == credit.RequestApproved {
		fmt.Fprintf(tw, "approved\t%s\n", money(r.ApprovedAmount))
		fmt.Fprintf(tw, "limit\t%s -> %s\n", money(r.PreviousLimit), money(r.NewLimit))
	}

	if r.Status != credit.RequestPending {
		fmt.Fprintf(tw, "decided by\t%s\n", r.DecidedBy)
		fmt.Fprintf(tw, "decided at\t%s\n", r.DecidedAt.Format(time.RFC3339))
		fmt.Fprintf(tw, "notes\t%s\n", r.AdminNotes)
	}

	_ = tw.Flush()
}

func printRequests(w io.Writer, rs []credit.LimitRequest) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACCOUNT\tSTATUS\tAMOUNT\tAPPROVED\tBY\tAT")

	for _, r := range rs {
		approved := "-"
		if r.Status == credit.RequestApproved {
			approved = money(r.ApprovedAmount)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.AccountID, r.Status, money(r.Amount), approved, r.RequestedBy, r.CreatedAt.Format(time.RFC3339))
	}

	_ = tw.Flush()
}
