package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/handoff/internal/queue"
)

func (a *app) taskCmd() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage per-session task queues",
	}

	addCmd := &cobra.Command{
		Use:   "add <session-type> <json>",
		Short: "Append a task to a session's queue",
		Long: `Append a task to the queue of the given session type.

The payload may be any JSON value, usually an object:
  handoff task add testing '{"feature": "login", "action": "verify"}'

Prints the new task id.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseValue(args[1])
			if err != nil {
				return err
			}
			id, err := a.broker(cmd).EnqueueTask(args[0], payload)
			if err != nil {
				return fmt.Errorf("failed to enqueue task: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list <session-type>",
		Short: "List queued tasks as JSON",
		Long:  `List the pending tasks of a session's queue. Use --all to include completed tasks.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.broker(cmd)
			tasks := b.PendingTasks(args[0])
			if all {
				tasks = b.Queue().List(args[0])
			}
			if tasks == nil {
				tasks = []queue.Task{}
			}
			return writeJSON(cmd.OutOrStdout(), tasks)
		},
	}
	listCmd.Flags().BoolVar(&all, "all", false, "include completed tasks")

	completeCmd := &cobra.Command{
		Use:   "complete <session-type> <task-id>",
		Short: "Mark a pending task completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.broker(cmd).CompleteTask(args[0], args[1]) {
				return fmt.Errorf("no pending task %q in the %s queue", args[1], args[0])
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Completed %s\n", args[1])
			return nil
		},
	}

	taskCmd.AddCommand(addCmd, listCmd, completeCmd)
	return taskCmd
}
