package main

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/services"
	"github.com/spf13/cobra"
)

func (a *app) reportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect and act on user reports",
	}

	var status, targetType string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, total, err := a.moderation.ListReports(cmd.Context(), services.ReportFilter{
				Status:     models.ReportStatus(status),
				TargetType: models.ReportTargetType(targetType),
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			rows := make([][]any, len(reports))
			for i, r := range reports {
				target := "(detached)"
				if t, ok := r.Target(); ok {
					target = t.Key()
				}
				rows[i] = []any{r.ID, r.Status, target, r.Reason, r.CreatedAt.Format("2006-01-02 15:04")}
			}
			if err := a.printTable(reports, "ID\tSTATUS\tTARGET\tREASON\tCREATED", rows); err != nil {
				return err
			}
			if a.output == "text" {
				fmt.Fprintf(a.out, "%d of %d\n", len(reports), total)
			}
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by status (Pending, Resolved, Dismissed)")
	list.Flags().StringVar(&targetType, "type", "", "Filter by target type (post, comment, category, user)")
	list.Flags().IntVar(&limit, "limit", 50, "Maximum reports to show")

	var groupStatus string
	groups := &cobra.Command{
		Use:   "groups",
		Short: "List reports grouped by target",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.moderation.ListReportGroups(cmd.Context(), models.ReportStatus(groupStatus))
			if err != nil {
				return err
			}
			rows := make([][]any, len(groups))
			for i, g := range groups {
				target := "(detached)"
				if g.Target != nil {
					target = g.Target.Key()
				}
				rows[i] = []any{g.AnchorID, target, g.Count, g.Pending, g.Dismissed, g.Resolved}
			}
			return a.printTable(groups, "ANCHOR\tTARGET\tCOUNT\tPENDING\tDISMISSED\tRESOLVED", rows)
		},
	}
	groups.Flags().StringVar(&groupStatus, "status", "", "Group only reports with this status; counts cover the matching reports only")

	cmd.AddCommand(
		list,
		groups,
		a.reportActionCmd("dismiss <report-id>", "Dismiss every open report on the same target",
			func(ctx context.Context, id uint) (int64, error) { return a.moderation.DismissReportGroup(ctx, id) }),
		a.reportActionCmd("undo <report-id>", "Reopen dismissed reports on the same target",
			func(ctx context.Context, id uint) (int64, error) { return a.moderation.UndoDismiss(ctx, id) }),
		a.reportActionCmd("delete-content <report-id>", "Delete the reported content and resolve its reports",
			func(ctx context.Context, id uint) (int64, error) { return a.moderation.DeleteReportedContent(ctx, id) }),
	)
	return cmd
}

func (a *app) reportActionCmd(use, short string, action func(context.Context, uint) (int64, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUintArg(args[0])
			if err != nil {
				return err
			}
			affected, err := action(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.output == "json" {
				return a.printJSON(map[string]any{"report_id": id, "affected": affected})
			}
			fmt.Fprintf(a.out, "%s: %d report(s) affected\n", cmd.Name(), affected)
			return nil
		},
	}
}
