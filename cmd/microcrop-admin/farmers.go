package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/microcrop/console/internal/api"
)

func newFarmersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farmers",
		Short: "Manage the farmer roster of your organization",
	}

	var listParams api.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List farmers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			farmers, page, err := a.client.ListFarmers(ctx, listParams)
			if err != nil {
				return err
			}
			if a.wantsJSON() {
				return a.printResult(map[string]any{"data": farmers, "pagination": page})
			}
			rows := make([][]string, 0, len(farmers))
			for _, f := range farmers {
				rows = append(rows, []string{
					f.ID, f.FirstName + " " + f.LastName, f.Phone,
					strconv.FormatFloat(f.FarmSizeHectares, 'f', 1, 64) + " ha",
				})
			}
			table([]string{"ID", "NAME", "PHONE", "FARM"}, rows)
			return nil
		},
	}
	list.Flags().IntVar(&listParams.Page, "page", 0, "page number")
	list.Flags().IntVar(&listParams.Limit, "limit", 0, "page size")
	list.Flags().StringVar(&listParams.Search, "search", "", "name filter")

	get := &cobra.Command{
		Use:   "get <farmer-id>",
		Short: "Show one farmer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			f, err := a.client.GetFarmer(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printResult(f)
		},
	}

	var in api.FarmerInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a farmer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			f, err := a.client.CreateFarmer(ctx, in)
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s %s (%s)\n", f.FirstName, f.LastName, f.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	create.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	create.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	create.Flags().Float64Var(&in.FarmSizeHectares, "farm-size", 0, "farm size in hectares")
	create.Flags().Float64Var(&in.Latitude, "lat", 0, "farm latitude")
	create.Flags().Float64Var(&in.Longitude, "lng", 0, "farm longitude")
	create.Flags().StringSliceVar(&in.CropTypes, "crops", nil, "crop types")
	create.MarkFlagRequired("first-name")
	create.MarkFlagRequired("last-name")

	deactivate := &cobra.Command{
		Use:   "deactivate <farmer-id>",
		Short: "Remove a farmer from the active roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			if err := a.client.DeactivateFarmer(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Farmer deactivated.")
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Bulk-register farmers from a CSV roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			report, err := a.client.ImportFarmers(ctx, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d, skipped %d\n", report.Imported, report.Skipped)
			for _, e := range report.Errors {
				fmt.Println("  -", e)
			}
			return nil
		},
	}

	cmd.AddCommand(list, get, create, deactivate, importCmd)
	return cmd
}
