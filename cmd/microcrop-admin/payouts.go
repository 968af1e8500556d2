package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/microcrop/console/internal/api"
)

func newPayoutsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payouts",
		Short: "Inspect payouts and damage assessments",
	}

	var listParams api.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List payouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			payouts, page, err := a.client.ListPayouts(ctx, listParams)
			if err != nil {
				return err
			}
			if a.wantsJSON() {
				return a.printResult(map[string]any{"data": payouts, "pagination": page})
			}
			rows := make([][]string, 0, len(payouts))
			for _, p := range payouts {
				rows = append(rows, []string{
					p.ID, strconv.FormatFloat(p.Amount, 'f', 2, 64),
					p.TriggerType, p.Status, p.TxHash,
				})
			}
			table([]string{"ID", "AMOUNT", "TRIGGER", "STATUS", "TX"}, rows)
			return nil
		},
	}
	list.Flags().IntVar(&listParams.Page, "page", 0, "page number")
	list.Flags().IntVar(&listParams.Limit, "limit", 0, "page size")

	get := &cobra.Command{
		Use:   "get <payout-id>",
		Short: "Show one payout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			p, err := a.client.GetPayout(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printResult(p)
		},
	}

	retry := &cobra.Command{
		Use:   "retry <payout-id>",
		Short: "Re-queue a failed payout settlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			p, err := a.client.RetryPayout(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Payout %s is now %s\n", p.ID, p.Status)
			return nil
		},
	}

	var policyID string
	assessments := &cobra.Command{
		Use:   "assessments",
		Short: "List damage assessments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			items, page, err := a.client.ListAssessments(ctx, policyID, api.ListParams{})
			if err != nil {
				return err
			}
			if a.wantsJSON() {
				return a.printResult(map[string]any{"data": items, "pagination": page})
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.ID, item.PolicyID, item.Source,
					strconv.FormatFloat(item.DamageRatio*100, 'f', 0, 64) + "%",
				})
			}
			table([]string{"ID", "POLICY", "SOURCE", "DAMAGE"}, rows)
			return nil
		},
	}
	assessments.Flags().StringVar(&policyID, "policy", "", "filter by policy ID")

	cmd.AddCommand(list, get, retry, assessments)
	return cmd
}
