package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/microcrop/console/internal/api"
)

func newStaffCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage organization staff and invitations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List staff members",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			staff, page, err := a.client.ListStaff(ctx, api.ListParams{})
			if err != nil {
				return err
			}
			if a.wantsJSON() {
				return a.printResult(map[string]any{"data": staff, "pagination": page})
			}
			rows := make([][]string, 0, len(staff))
			for _, m := range staff {
				active := "active"
				if !m.IsActive {
					active = "inactive"
				}
				rows = append(rows, []string{m.ID, m.FirstName + " " + m.LastName, m.Email, m.Role, active})
			}
			table([]string{"ID", "NAME", "EMAIL", "ROLE", "STATE"}, rows)
			return nil
		},
	}

	var email, role string
	invite := &cobra.Command{
		Use:   "invite",
		Short: "Invite a new operator by email",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			inv, err := a.client.CreateInvitation(ctx, email, role)
			if err != nil {
				return err
			}
			fmt.Printf("Invitation %s sent to %s (expires %s)\n", inv.ID, inv.Email, inv.ExpiresAt.Format("2006-01-02"))
			return nil
		},
	}
	invite.Flags().StringVar(&email, "email", "", "invitee email")
	invite.Flags().StringVar(&role, "role", api.RoleOrgStaff, "role to grant")
	invite.MarkFlagRequired("email")

	invitations := &cobra.Command{
		Use:   "invitations",
		Short: "List invitations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			invs, page, err := a.client.ListInvitations(ctx, api.ListParams{})
			if err != nil {
				return err
			}
			if a.wantsJSON() {
				return a.printResult(map[string]any{"data": invs, "pagination": page})
			}
			rows := make([][]string, 0, len(invs))
			for _, inv := range invs {
				rows = append(rows, []string{inv.ID, inv.Email, inv.Role, inv.Status})
			}
			table([]string{"ID", "EMAIL", "ROLE", "STATUS"}, rows)
			return nil
		},
	}

	revoke := &cobra.Command{
		Use:   "revoke <invitation-id>",
		Short: "Revoke a pending invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			if err := a.client.RevokeInvitation(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Invitation revoked.")
			return nil
		},
	}

	deactivate := &cobra.Command{
		Use:   "deactivate <staff-id>",
		Short: "Disable an operator account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			if err := a.client.DeactivateStaff(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Staff member deactivated.")
			return nil
		},
	}

	cmd.AddCommand(list, invite, invitations, revoke, deactivate)
	return cmd
}
