package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newDashboardCmd(a *app) *cobra.Command {
	var platform bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the analytics dashboard for your role",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if platform || a.store.IsPlatformAdmin() {
				d, err := a.client.GetPlatformDashboard(ctx)
				if err != nil {
					return err
				}
				if a.wantsJSON() {
					return a.printResult(d)
				}
				fmt.Printf("Organizations: %d (%d awaiting KYB)\n", d.TotalOrganizations, d.PendingKYB)
				fmt.Printf("Farmers:       %d\n", d.TotalFarmers)
				fmt.Printf("Policies:      %d active, %.2f covered\n", d.ActivePolicies, d.TotalCoverage)
				fmt.Printf("Payouts:       %.2f paid out\n", d.TotalPayouts)
				fmt.Printf("Liquidity:     %.2f pooled\n", d.PoolLiquidity)
				return nil
			}

			d, err := a.client.GetOrgDashboard(ctx)
			if err != nil {
				return err
			}
			if a.wantsJSON() {
				return a.printResult(d)
			}
			fmt.Printf("Farmers:  %d\n", d.TotalFarmers)
			fmt.Printf("Policies: %d active, %.2f covered\n", d.ActivePolicies, d.TotalCoverage)
			fmt.Printf("Payouts:  %d pending, %.2f total\n", d.PendingPayouts, d.TotalPayouts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&platform, "platform", false, "force the platform-wide dashboard")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:       "export <farmers|policies|payouts>",
		Short:     "Download a CSV export",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"farmers", "policies", "payouts"},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Exports can outlive the access token; keep it fresh while the
			// download runs.
			refreshCtx, stopRefresh := context.WithCancel(cmd.Context())
			defer stopRefresh()
			go a.store.AutoRefresh(refreshCtx, 30*time.Second)

			ctx, cancel := commandContext(cmd)
			defer cancel()

			var data []byte
			var err error
			switch args[0] {
			case "farmers":
				data, err = a.client.ExportFarmersCSV(ctx)
			case "policies":
				data, err = a.client.ExportPoliciesCSV(ctx)
			case "payouts":
				data, err = a.client.ExportPayoutsCSV(ctx)
			default:
				return fmt.Errorf("unknown export %q", args[0])
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = args[0] + ".csv"
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %d bytes to %s\n", len(data), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (defaults to <kind>.csv)")
	return cmd
}
