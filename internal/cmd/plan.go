package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/handoff/internal/plan"
)

func (a *app) planCmd() *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage test plans",
	}

	createCmd := &cobra.Command{
		Use:   "create <json>",
		Short: "Write a new pending test plan",
		Long: `Write a new test plan from a JSON object and print its path.

  handoff plan create '{"feature": "search", "tests": ["empty query"]}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parsePayload(args[0])
			if err != nil {
				return err
			}
			path, err := a.broker(cmd).CreateTestPlan(fields)
			if err != nil {
				return fmt.Errorf("failed to create test plan: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	var status, format string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List test plans, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !validPlanStatus(plan.Status(status)) {
				return fmt.Errorf("invalid status %q: must be one of pending, in_progress, completed", status)
			}
			plans := a.broker(cmd).TestPlans(plan.Status(status))
			if plans == nil {
				plans = []plan.Plan{}
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				return writeJSON(out, plans)
			case formatText:
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tCREATED\tSUMMARY")
				for _, p := range plans {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Status, p.CreatedAt, summarize(p.Fields, "feature", "description", "source"))
				}
				return tw.Flush()
			}
			return fmt.Errorf("invalid format %q: must be one of json, text", format)
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "only plans with this status (pending, in_progress, completed)")
	listCmd.Flags().StringVarP(&format, "format", "o", formatJSON, "output format: json or text")

	statusCmd := &cobra.Command{
		Use:   "status <plan-file> <status>",
		Short: "Change a test plan's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := plan.Status(args[1])
			if !validPlanStatus(st) {
				return fmt.Errorf("invalid status %q: must be one of pending, in_progress, completed", args[1])
			}
			if !a.broker(cmd).SetTestPlanStatus(args[0], st) {
				return fmt.Errorf("could not update test plan %s", args[0])
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], st)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print one test plan as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := a.broker(cmd).Plans().Get(args[0])
			if !ok {
				return fmt.Errorf("no readable plan at %s", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}

	planCmd.AddCommand(createCmd, listCmd, showCmd, statusCmd)
	return planCmd
}

func validPlanStatus(s plan.Status) bool {
	switch s {
	case plan.StatusPending, plan.StatusInProgress, plan.StatusCompleted:
		return true
	}
	return false
}
