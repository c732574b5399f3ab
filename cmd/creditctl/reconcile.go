package main

import (
	"fmt"

	"github.com/fastprodman/creditledger/internal/services/reconciliation"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(verifyCmd, repairCmd, reconcileCmd)

	repairCmd.Flags().String("by", "creditctl", "Actor recorded on the correction entry")
	reconcileCmd.Flags().Bool("repair", false, "Repair drifted accounts instead of only reporting them")
}

var verifyCmd = &cobra.Command{
	Use:   "verify ACCOUNT_ID",
	Short: "Replay an account's history and compare it with the stored balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := accountArg(args)
		if err != nil {
			return err
		}

		report, err := app.recon.Verify(cmd.Context(), tenantID, id)
		if err != nil {
			return err
		}

		printReport(cmd.OutOrStdout(), report)

		return nil
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair ACCOUNT_ID",
	Short: "Write a correction entry when the stored balance drifted from history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := accountArg(args)
		if err != nil {
			return err
		}

		by, _ := cmd.Flags().GetString("by")

		out, err := app.recon.Repair(cmd.Context(), tenantID, id, by)
		if err != nil {
			return err
		}

		printReport(cmd.OutOrStdout(), out.Report)

		if !out.Repaired {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to repair")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "correction entry %d written, used credit now %s\n",
			out.Result.Entry.ID, money(out.Result.Account.UsedCredit))

		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation pass over every account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := app.cfg.Recon
		cfg.AutoRepair, _ = cmd.Flags().GetBool("repair")

		sum, err := reconciliation.NewScheduler(app.recon, cfg).RunOnce(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "checked %d, drifted %d, repaired %d, failed %d, purged %d idempotency keys\n",
			sum.Checked, sum.Drifted, sum.Repaired, sum.Failed, sum.Purged)

		if sum.Failed > 0 {
			return fmt.Errorf("%d accounts could not be reconciled", sum.Failed)
		}

		return nil
	},
}
