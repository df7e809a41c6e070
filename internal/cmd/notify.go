package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/handoff/internal/eventlog"
	"github.com/Iron-Ham/handoff/internal/notify"
)

func (a *app) notifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify <type> [json | message...]",
		Short: "Deliver a coordination notification",
		Long: `Render a coordination notification and deliver it to the configured sink.

Known types: test_plan_ready, test_results_available, critical_failure,
tests_passed, coordination_error, post_tool_notification. Data is a JSON
object or free text used as the message:

  handoff notify critical_failure '{"summary": "3 failing", "blocking": true}'
  handoff notify coordination_error queue file is corrupt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := notify.Build(args[0], notify.ParseData(args[1:]))

			if a.events != nil {
				err := a.events.Append(eventlog.NotifyLog, eventlog.Entry{
					Kind: n.Kind,
					Data: map[string]any{"message": n.Message, "priority": string(n.Priority)},
				})
				if err != nil {
					a.logger.Warn("event log append failed", "error", err)
				}
			}

			if err := a.sink(cmd).Notify(n); err != nil {
				return fmt.Errorf("failed to deliver notification: %w", err)
			}
			return nil
		},
	}
}
