package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/handoff/internal/retention"
)

func (a *app) cleanupCmd() *cobra.Command {
	var (
		days   int
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove old test plans and result reports",
		Long: `Remove test plans and result reports last modified more than --days
ago, along with temporary files left by interrupted writes. Task queues
and signals are never removed.

Defaults to coordination.retention_days from the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.Coordination.RetentionDays
			}
			if days < 0 {
				return fmt.Errorf("--days must not be negative, got %d", days)
			}

			b := a.broker(cmd)
			out := cmd.OutOrStdout()

			if dryRun {
				maxAge := time.Duration(days) * retention.Day
				candidates := b.Sweeper().Candidates(maxAge)
				for _, c := range candidates {
					_, _ = fmt.Fprintf(out, "would remove %s (modified %s)\n", c.Path, c.ModTime.Format(time.RFC3339))
				}
				for _, c := range b.Sweeper().Leftovers(maxAge) {
					_, _ = fmt.Fprintf(out, "would remove %s (stale temporary file)\n", c.Path)
				}
				_, _ = fmt.Fprintf(out, "%d file(s) older than %d day(s)\n", len(candidates), days)
				return nil
			}

			n := b.CleanupDays(days)
			_, _ = fmt.Fprintf(out, "Removed %d file(s) older than %d day(s)\n", n, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", retention.DefaultDays, "remove documents older than this many days")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be removed without removing it")
	return cmd
}
