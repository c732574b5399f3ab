package main

import (
	"fmt"

	"github.com/fastprodman/creditledger/internal/credit"
	"github.com/fastprodman/creditledger/internal/repos/limitrequests"
	"github.com/fastprodman/creditledger/internal/services/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(limitRequestCmd)
	limitRequestCmd.AddCommand(requestCreateCmd, requestListCmd, requestShowCmd, requestApproveCmd, requestRejectCmd)

	requestCreateCmd.Flags().String("reason", "", "Why the increase is needed")
	requestCreateCmd.Flags().String("justification", "", "Longer business case")
	requestCreateCmd.Flags().String("by", "creditctl", "Who asks for the increase")
	_ = requestCreateCmd.MarkFlagRequired("reason")

	requestListCmd.Flags().String("status", "", "Only requests in this status (pending, approved, rejected)")
	requestListCmd.Flags().String("account", "", "Only requests of this account")
	requestListCmd.Flags().Int("limit", 15, "Maximum requests to print")
	requestListCmd.Flags().Int("offset", 0, "Requests to skip")

	for _, c := range []*cobra.Command{requestApproveCmd, requestRejectCmd} {
		c.Flags().String("notes", "", "Notes stored with the decision")
		c.Flags().String("by", "", "Administrator making the decision")
		_ = c.MarkFlagRequired("by")
	}
}

var limitRequestCmd = &cobra.Command{
	Use:   "limit-request",
	Short: "File and decide credit limit increase requests",
}

var requestCreateCmd = &cobra.Command{
	Use:   "create ACCOUNT_ID AMOUNT",
	Short: "Ask for the account's limit to be raised by AMOUNT",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := accountArg(args)
		if err != nil {
			return err
		}

		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}

		reason, _ := cmd.Flags().GetString("reason")
		justification, _ := cmd.Flags().GetString("justification")
		by, _ := cmd.Flags().GetString("by")

		req, err := app.ledger.RequestIncrease(cmd.Context(), ledger.IncreaseRequest{
			TenantID:      tenantID,
			AccountID:     id,
			Amount:        amount,
			Reason:        reason,
			Justification: justification,
			RequestedBy:   by,
		})
		if err != nil {
			return err
		}

		printRequest(cmd.OutOrStdout(), req)

		return nil
	},
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tenant's increase requests, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := requireTenant()
		if err != nil {
			return err
		}

		f, err := requestFilter(cmd)
		if err != nil {
			return err
		}

		list, err := app.ledger.ListRequests(cmd.Context(), f)
		if err != nil {
			return err
		}

		printRequests(cmd.OutOrStdout(), list)

		return nil
	},
}

var requestShowCmd = &cobra.Command{
	Use:   "show REQUEST_ID",
	Short: "Show one increase request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requestArg(args)
		if err != nil {
			return err
		}

		req, err := app.ledger.LimitRequest(cmd.Context(), tenantID, id)
		if err != nil {
			return err
		}

		printRequest(cmd.OutOrStdout(), req)

		return nil
	},
}

var requestApproveCmd = &cobra.Command{
	Use:   "approve REQUEST_ID AMOUNT",
	Short: "Approve a request, raising the limit by AMOUNT",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}

		return decide(cmd, args, credit.DecisionApprove, amount)
	},
}

var requestRejectCmd = &cobra.Command{
	Use:   "reject REQUEST_ID",
	Short: "Reject a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decide(cmd, args, credit.DecisionReject, decimal.Zero)
	},
}

func decide(cmd *cobra.Command, args []string, dec credit.Decision, amount decimal.Decimal) error {
	id, err := requestArg(args)
	if err != nil {
		return err
	}

	notes, _ := cmd.Flags().GetString("notes")
	by, _ := cmd.Flags().GetString("by")

	out, err := app.ledger.DecideRequest(cmd.Context(), ledger.DecisionRequest{
		TenantID:       tenantID,
		RequestID:      id,
		Decision:       dec,
		ApprovedAmount: amount,
		Notes:          notes,
		DecidedBy:      by,
	})
	if err != nil {
		return err
	}

	printRequest(cmd.OutOrStdout(), out.Request)
	printAccount(cmd.OutOrStdout(), out.Account)

	return nil
}

func requestFilter(cmd *cobra.Command) (limitrequests.Filter, error) {
	f := limitrequests.Filter{TenantID: tenantID}

	if raw, _ := cmd.Flags().GetString("status"); raw != "" {
		st, err := credit.ParseRequestStatus(raw)
		if err != nil {
			return limitrequests.Filter{}, err
		}

		f.Status = st
	}

	if raw, _ := cmd.Flags().GetString("account"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return limitrequests.Filter{}, fmt.Errorf("invalid --account %q: %w", raw, err)
		}

		f.AccountID = id
	}

	f.Limit, _ = cmd.Flags().GetInt("limit")
	f.Offset, _ = cmd.Flags().GetInt("offset")

	return f, nil
}

func requestArg(args []string) (uuid.UUID, error) {
	err := requireTenant()
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid request id %q: %w", args[0], err)
	}

	return id, nil
}
