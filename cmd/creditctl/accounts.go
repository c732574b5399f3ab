package main

import (
	"fmt"
	"time"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/repos/entries"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd, statusCmd, historyCmd, limitCmd, freezeCmd, unfreezeCmd)

	openCmd.Flags().Uint64("customer", 0, "Business customer id")
	openCmd.Flags().String("limit", "", "Credit limit (defaults to "+credit.DefaultCreditLimit.StringFixed(credit.MoneyScale)+")")
	openCmd.Flags().String("by", "creditctl", "Actor recorded on the account")

	historyCmd.Flags().String("kind", "", "Only entries of this kind")
	historyCmd.Flags().String("from", "", "Only entries at or after this RFC3339 time")
	historyCmd.Flags().String("to", "", "Only entries before this RFC3339 time")
	historyCmd.Flags().Int("limit", 50, "Maximum entries to print")
	historyCmd.Flags().Int("offset", 0, "Entries to skip")

	for _, c := range []*cobra.Command{limitCmd, freezeCmd, unfreezeCmd} {
		c.Flags().String("by", "creditctl", "Actor recorded on the change")
	}
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a credit account for a business customer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := requireTenant()
		if err != nil {
			return err
		}

		customer, _ := cmd.Flags().GetUint64("customer")
		rawLimit, _ := cmd.Flags().GetString("limit")
		by, _ := cmd.Flags().GetString("by")

		req := ledger.OpenAccountRequest{TenantID: tenantID, BusinessCustomerID: customer, CreatedBy: by}

		if rawLimit != "" {
			limit, err := decimal.NewFromString(rawLimit)
			if err != nil {
				return fmt.Errorf("parse --limit: %w", err)
			}

			req.CreditLimit = &limit
		}

		acc, err := app.ledger.OpenAccount(cmd.Context(), req)
		if err != nil {
			return err
		}

		printAccount(cmd.OutOrStdout(), acc)

		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status ACCOUNT_ID",
	Short: "Show an account's credit snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := accountArg(args)
		if err != nil {
			return err
		}

		acc, err := app.ledger.Status(cmd.Context(), tenantID, id)
		if err != nil {
			return err
		}

		printAccount(cmd.OutOrStdout(), acc)

		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history ACCOUNT_ID",
	Short: "List an account's ledger entries, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := accountArg(args)
		if err != nil {
			return err
		}

		f, err := historyFilter(cmd)
		if err != nil {
			return err
		}

		es, err := app.ledger.History(cmd.Context(), tenantID, id, f)
		if err != nil {
			return err
		}

		printEntries(cmd.OutOrStdout(), es)

		return nil
	},
}

func historyFilter(cmd *cobra.Command) (entries.Filter, error) {
	var f entries.Filter

	kind, _ := cmd.Flags().GetString("kind")
	if kind != "" {
		k, err := credit.ParseKind(kind)
		if err != nil {
			return f, err
		}

		f.Kind = k
	}

	for flag, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		raw, _ := cmd.Flags().GetString(flag)
		if raw == "" {
			continue
		}

		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("parse --%s: %w", flag, err)
		}

		*dst = t
	}

	f.Limit, _ = cmd.Flags().GetInt("limit")
	f.Offset, _ = cmd.Flags().GetInt("offset")

	return f, nil
}

var limitCmd = &cobra.Command{
	Use:   "limit ACCOUNT_ID AMOUNT",
	Short: "Change an account's credit limit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := accountArg(args)
		if err != nil {
			return err
		}

		limit, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}

		by, _ := cmd.Flags().GetString("by")

		acc, err := app.ledger.SetCreditLimit(cmd.Context(), tenantID, id, limit, by)
		if err != nil {
			return err
		}

		printAccount(cmd.OutOrStdout(), acc)

		return nil
	},
}

var freezeCmd = &cobra.Command{
	Use:   "freeze ACCOUNT_ID",
	Short: "Stop new holds and charges on an account",
	Args:  cobra.ExactArgs(1),
	RunE:  setFrozen(true),
}

var unfreezeCmd = &cobra.Command{
	Use:   "unfreeze ACCOUNT_ID",
	Short: "Lift an administrative freeze",
	Args:  cobra.ExactArgs(1),
	RunE:  setFrozen(false),
}

func setFrozen(frozen bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := accountArg(args)
		if err != nil {
			return err
		}

		by, _ := cmd.Flags().GetString("by")

		acc, err := app.ledger.SetFrozen(cmd.Context(), tenantID, id, frozen, by)
		if err != nil {
			return err
		}

		printAccount(cmd.OutOrStdout(), acc)

		return nil
	}
}

// accountArg parses the account id and checks --tenant on the way.
func accountArg(args []string) (uuid.UUID, error) {
	err := requireTenant()
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid account id %q: %w", args[0], err)
	}

	return id, nil
}
