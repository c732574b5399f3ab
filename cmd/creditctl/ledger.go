package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type orderFn func(ctx context.Context, req ledger.OrderRequest) (ledger.Result, error)

func init() {
	rootCmd.AddCommand(orderCmd, adjustCmd)

	subs := []struct {
		kind credit.Kind
		fn   func() orderFn
	}{
		{credit.KindHold, func() orderFn { return app.ledger.Hold }},
		{credit.KindRelease, func() orderFn { return app.ledger.Release }},
		{credit.KindCharge, func() orderFn { return app.ledger.Charge }},
		{credit.KindRefund, func() orderFn { return app.ledger.Refund }},
	}

	for _, s := range subs {
		c := &cobra.Command{
			Use:   string(s.kind) + " ACCOUNT_ID ORDER_ID AMOUNT",
			Short: "Record a " + string(s.kind) + " against an order",
			Args:  cobra.ExactArgs(3),
			RunE:  runOrder(s.fn),
		}
		c.Flags().String("key", "", "Idempotency key (random when empty)")
		c.Flags().String("by", "creditctl", "Actor recorded on the entry")
		orderCmd.AddCommand(c)
	}

	adjustCmd.Flags().String("reason", "", "Why the balance is adjusted")
	adjustCmd.Flags().String("by", "", "Operator making the adjustment")
	adjustCmd.Flags().String("ref", "", "External reference such as an invoice number")
	_ = adjustCmd.MarkFlagRequired("reason")
	_ = adjustCmd.MarkFlagRequired("by")
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Record order operations by hand",
}

// runOrder resolves fn lazily since services exist only after the root pre-run.
func runOrder(fn func() orderFn) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := accountArg(args)
		if err != nil {
			return err
		}

		orderID, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("parse order id: %w", err)
		}

		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}

		key, _ := cmd.Flags().GetString("key")
		if key == "" {
			key = uuid.NewString()
		}

		by, _ := cmd.Flags().GetString("by")

		res, err := fn()(cmd.Context(), ledger.OrderRequest{
			TenantID:       tenantID,
			AccountID:      id,
			OrderID:        orderID,
			Amount:         amount,
			IdempotencyKey: key,
			CreatedBy:      by,
		})
		if err != nil {
			return err
		}

		if res.Replayed {
			fmt.Fprintf(cmd.ErrOrStderr(), "key %s already applied, showing the original result\n", key)
		}

		printEntries(cmd.OutOrStdout(), res.Entries)
		fmt.Fprintf(cmd.OutOrStdout(), "available: %s\n", money(res.AvailableCredit))

		return nil
	}
}

var adjustCmd = &cobra.Command{
	Use:   "adjust ACCOUNT_ID DELTA",
	Short: "Adjust used credit by a signed amount",
	Long: `Adjust used credit by a signed amount. A positive delta adds to used
credit and may push the account over its limit; a negative delta gives
credit back and may not take used credit below zero.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := accountArg(args)
		if err != nil {
			return err
		}

		delta, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("parse delta: %w", err)
		}

		reason, _ := cmd.Flags().GetString("reason")
		by, _ := cmd.Flags().GetString("by")
		ref, _ := cmd.Flags().GetString("ref")

		res, err := app.ledger.Adjustment(cmd.Context(), ledger.AdjustmentRequest{
			TenantID:  tenantID,
			AccountID: id,
			Delta:     delta,
			Reason:    reason,
			Reference: ref,
			CreatedBy: by,
		})
		if err != nil {
			return err
		}

		printEntries(cmd.OutOrStdout(), res.Entries)
		printAccount(cmd.OutOrStdout(), res.Account)

		return nil
	},
}
