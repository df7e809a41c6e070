package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (a *app) statusCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize the coordination directory",
		Long: `Summarize pending tasks per session type, test plans by status, result
reports on record and outstanding signals. Nothing is modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.broker(cmd).Status()
			out := cmd.OutOrStdout()

			switch format {
			case formatJSON:
				return writeJSON(out, st)
			case formatYAML:
				return writeYAML(out, st)
			case formatText:
				_, err := io.WriteString(out, renderStatus(st, a.isTerminal(out)))
				return err
			}
			return fmt.Errorf("invalid format %q: must be one of json, yaml, text", format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "output format: json, yaml or text")
	return cmd
}
