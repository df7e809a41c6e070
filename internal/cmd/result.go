package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/handoff/internal/result"
)

func (a *app) resultCmd() *cobra.Command {
	resultCmd := &cobra.Command{
		Use:   "result",
		Short: "Record and list test results",
	}

	var recordPlanID string
	recordCmd := &cobra.Command{
		Use:   "record <json>",
		Short: "Write a test result report",
		Long: `Write a test result report and print its path.

  handoff result record --plan-id plan_1700000000 '{"passed": 12, "failed": 0}'

A positive "failed" count raises a critical notification.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parsePayload(args[0])
			if err != nil {
				return err
			}
			path, err := a.broker(cmd).RecordResults(fields, recordPlanID)
			if err != nil {
				return fmt.Errorf("failed to record results: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	recordCmd.Flags().StringVar(&recordPlanID, "plan-id", "", "id of the test plan these results belong to")

	var listPlanID, format string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List test results, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := a.broker(cmd).TestResults(listPlanID)
			if results == nil {
				results = []result.Result{}
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				return writeJSON(out, results)
			case formatText:
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tPLAN\tCREATED\tSUMMARY")
				for _, r := range results {
					planID := r.PlanID
					if planID == "" {
						planID = "-"
					}
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, planID, r.CreatedAt, summarize(r.Fields, "summary", "message"))
				}
				return tw.Flush()
			}
			return fmt.Errorf("invalid format %q: must be one of json, text", format)
		},
	}
	listCmd.Flags().StringVar(&listPlanID, "plan-id", "", "only results for this plan id")
	listCmd.Flags().StringVarP(&format, "format", "o", formatJSON, "output format: json or text")

	resultCmd.AddCommand(recordCmd, listCmd)
	return resultCmd
}
