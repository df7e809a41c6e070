package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/handoff/internal/config"
)

func (a *app) configCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View handoff configuration",
		Long: `View handoff configuration.

Without arguments, displays the effective configuration.`,
		RunE: a.runConfigShow,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE:  a.runConfigShow,
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if used := a.v.ConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintln(out, used)
				return nil
			}
			_, _ = fmt.Fprintf(out, "%s (not found)\n", config.ConfigFile())
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Long:  `Create a default config file at ~/.config/handoff/config.yaml with all available options.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigFile()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
			if err := writeYAML(f, config.Default()); err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to write config file: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(showCmd, pathCmd, initCmd)
	return configCmd
}

func (a *app) runConfigShow(cmd *cobra.Command, args []string) error {
	return writeYAML(cmd.OutOrStdout(), a.cfg)
}
