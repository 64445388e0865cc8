package main

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/spf13/cobra"
)

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.admin.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]any, len(users))
			for i, u := range users {
				rows[i] = []any{u.ID, u.Username, u.Role, u.IsActive}
			}
			return a.printTable(users, "ID\tUSERNAME\tROLE\tACTIVE", rows)
		},
	}

	ban := &cobra.Command{
		Use:   "ban <user-id>",
		Short: "Toggle a user's suspension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUIDArg(args[0])
			if err != nil {
				return err
			}
			active, err := a.admin.ToggleUserBan(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "user %s active=%t\n", id, active)
			return nil
		},
	}

	var revoke bool
	promote := &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the admin role to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.admin.FindUserByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			role := models.RoleAdmin
			if revoke {
				role = models.RoleUser
			}
			if err := a.admin.SetUserRole(cmd.Context(), user.ID, role); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "user %s role=%s\n", user.Username, role)
			return nil
		},
	}
	promote.Flags().BoolVar(&revoke, "revoke", false, "Demote the user back to a regular role")

	cmd.AddCommand(list, ban, promote)
	return cmd
}
