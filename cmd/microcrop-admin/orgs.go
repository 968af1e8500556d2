package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/microcrop/console/internal/api"
)

func newOrgsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orgs",
		Short: "Manage organizations and KYB reviews (platform operators)",
	}

	var listParams api.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			orgs, page, err := a.client.ListOrganizations(ctx, listParams)
			if err != nil {
				return err
			}
			if a.wantsJSON() {
				return a.printResult(map[string]any{"data": orgs, "pagination": page})
			}
			rows := make([][]string, 0, len(orgs))
			for _, o := range orgs {
				rows = append(rows, []string{o.ID, o.Name, o.Country, o.KYBStatus})
			}
			table([]string{"ID", "NAME", "COUNTRY", "KYB"}, rows)
			return nil
		},
	}
	list.Flags().IntVar(&listParams.Page, "page", 0, "page number")
	list.Flags().IntVar(&listParams.Limit, "limit", 0, "page size")
	list.Flags().StringVar(&listParams.Search, "search", "", "name filter")
	list.Flags().StringVar(&listParams.Status, "status", "", "KYB status filter")

	get := &cobra.Command{
		Use:   "get <org-id>",
		Short: "Show one organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			org, err := a.client.GetOrganization(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printResult(org)
		},
	}

	var notes string
	approve := &cobra.Command{
		Use:   "approve-kyb <org-id>",
		Short: "Approve an organization's KYB verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			org, err := a.client.ApproveKYB(ctx, args[0], notes)
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", org.Name, org.KYBStatus)
			return nil
		},
	}
	approve.Flags().StringVar(&notes, "notes", "", "review notes")

	var reason string
	reject := &cobra.Command{
		Use:   "reject-kyb <org-id>",
		Short: "Reject an organization's KYB verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			org, err := a.client.RejectKYB(ctx, args[0], reason)
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", org.Name, org.KYBStatus)
			return nil
		},
	}
	reject.Flags().StringVar(&reason, "reason", "", "rejection reason")

	var docType string
	uploadDoc := &cobra.Command{
		Use:   "upload-kyb-doc <file>",
		Short: "Submit a KYB document for your organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := a.client.UploadKYBDocument(ctx, docType, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Printf("Submitted %s (%s)\n", doc.FileName, doc.ID)
			return nil
		},
	}
	uploadDoc.Flags().StringVar(&docType, "type", "REGISTRATION_CERTIFICATE", "document type")

	cmd.AddCommand(list, get, approve, reject, uploadDoc)
	return cmd
}
