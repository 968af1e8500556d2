package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/microcrop/console/internal/api"
)

func newPoliciesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "Manage insurance policies",
	}

	var listParams api.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			policies, page, err := a.client.ListPolicies(ctx, listParams)
			if err != nil {
				return err
			}
			if a.wantsJSON() {
				return a.printResult(map[string]any{"data": policies, "pagination": page})
			}
			rows := make([][]string, 0, len(policies))
			for _, p := range policies {
				rows = append(rows, []string{
					p.ID, p.CropType,
					strconv.FormatFloat(p.CoverageAmount, 'f', 2, 64),
					p.Status, p.EndDate.Format("2006-01-02"),
				})
			}
			table([]string{"ID", "CROP", "COVERAGE", "STATUS", "ENDS"}, rows)
			return nil
		},
	}
	list.Flags().IntVar(&listParams.Page, "page", 0, "page number")
	list.Flags().IntVar(&listParams.Limit, "limit", 0, "page size")
	list.Flags().StringVar(&listParams.Status, "status", "", "status filter")

	get := &cobra.Command{
		Use:   "get <policy-id>",
		Short: "Show one policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			p, err := a.client.GetPolicy(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printResult(p)
		},
	}

	var in api.PolicyInput
	var start, end string
	create := &cobra.Command{
		Use:   "create",
		Short: "Underwrite a policy for a farmer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			var err error
			if in.StartDate, err = time.Parse("2006-01-02", start); err != nil {
				return fmt.Errorf("invalid --start date: %w", err)
			}
			if in.EndDate, err = time.Parse("2006-01-02", end); err != nil {
				return fmt.Errorf("invalid --end date: %w", err)
			}

			p, err := a.client.CreatePolicy(ctx, in)
			if err != nil {
				return err
			}
			fmt.Printf("Policy %s created, premium %.2f\n", p.ID, p.Premium)
			return nil
		},
	}
	create.Flags().StringVar(&in.FarmerID, "farmer", "", "farmer ID")
	create.Flags().StringVar(&in.CropType, "crop", "", "crop type")
	create.Flags().Float64Var(&in.CoverageAmount, "coverage", 0, "coverage amount")
	create.Flags().StringVar(&start, "start", "", "cover start date (YYYY-MM-DD)")
	create.Flags().StringVar(&end, "end", "", "cover end date (YYYY-MM-DD)")
	create.MarkFlagRequired("farmer")
	create.MarkFlagRequired("crop")
	create.MarkFlagRequired("coverage")
	create.MarkFlagRequired("start")
	create.MarkFlagRequired("end")

	var reason string
	cancelCmd := &cobra.Command{
		Use:   "cancel <policy-id>",
		Short: "Cancel an active policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			p, err := a.client.CancelPolicy(ctx, args[0], reason)
			if err != nil {
				return err
			}
			fmt.Printf("Policy %s is now %s\n", p.ID, p.Status)
			return nil
		},
	}
	cancelCmd.Flags().StringVar(&reason, "reason", "", "cancellation reason")

	cmd.AddCommand(list, get, create, cancelCmd)
	return cmd
}
