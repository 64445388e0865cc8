package main

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.admin.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]any, len(categories))
			for i, c := range categories {
				rows[i] = []any{c.ID, c.Name, c.IsVerified, c.IsRestricted}
			}
			return a.printTable(categories, "ID\tNAME\tVERIFIED\tRESTRICTED", rows)
		},
	}

	verify := &cobra.Command{
		Use:   "verify <category-id>",
		Short: "Toggle the verified flag of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUintArg(args[0])
			if err != nil {
				return err
			}
			verified, err := a.admin.ToggleCategoryVerification(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "category %d verified=%t\n", id, verified)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category with its posts and resolve its reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUintArg(args[0])
			if err != nil {
				return err
			}
			affected, err := a.admin.DeleteCategory(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "category %d deleted, %d report(s) resolved\n", id, affected)
			return nil
		},
	}

	cmd.AddCommand(list, verify, del)
	return cmd
}

func (a *app) requestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Review category access requests",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List access requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := a.admin.ListAccessRequests(cmd.Context(), models.AccessRequestStatus(status))
			if err != nil {
				return err
			}
			rows := make([][]any, len(requests))
			for i, r := range requests {
				rows[i] = []any{r.ID, r.CategoryID, r.UserID, r.Status, r.Reason}
			}
			return a.printTable(requests, "ID\tCATEGORY\tUSER\tSTATUS\tREASON", rows)
		},
	}
	list.Flags().StringVar(&status, "status", "Pending", "Filter by status (Pending, Approved, Rejected, or empty for all)")

	cmd.AddCommand(
		list,
		a.reviewCmd("approve <request-id>", "Approve an access request", "approved",
			func(ctx context.Context, id uint) error { return a.admin.ApproveAccessRequest(ctx, id, uuid.Nil) }),
		a.reviewCmd("reject <request-id>", "Reject an access request", "rejected",
			func(ctx context.Context, id uint) error { return a.admin.RejectAccessRequest(ctx, id, uuid.Nil) }),
	)
	return cmd
}

func (a *app) reviewCmd(use, short, done string, action func(context.Context, uint) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUintArg(args[0])
			if err != nil {
				return err
			}
			if err := action(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "request %d %s\n", id, done)
			return nil
		},
	}
}
