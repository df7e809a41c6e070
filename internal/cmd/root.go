// Package cmd implements the handoff command-line interface.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/handoff/internal/config"
	"github.com/Iron-Ham/handoff/internal/coordination"
	"github.com/Iron-Ham/handoff/internal/event"
	"github.com/Iron-Ham/handoff/internal/eventlog"
	"github.com/Iron-Ham/handoff/internal/logging"
	"github.com/Iron-Ham/handoff/internal/notify"
	"github.com/Iron-Ham/handoff/internal/store"
)

// app carries the state shared by every command in one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	root    string

	cfg    *config.Config
	logger *logging.Logger
	events *eventlog.Log

	// stdin is read by the handoff command; tests replace it.
	stdin io.Reader
	// isTerminal reports whether styled output may be used.
	isTerminal func(io.Writer) bool
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{
		v:          viper.New(),
		stdin:      os.Stdin,
		isTerminal: writerIsTerminal,
	}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "handoff",
		Short: "File-based coordination between agent sessions",
		Long: `handoff lets independently running sessions hand work to each other
through a shared coordination directory: task queues, test plans, result
reports and one-shot signals, all stored as plain JSON files.

Run without a subcommand to perform a self-test: create a sample test plan,
signal the testing session and print the coordination status.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: a.runSelfTest,
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is $HOME/.config/handoff/config.yaml)")
	root.PersistentFlags().StringVar(&a.root, "root", "", "project root holding the coordination directory (default is the current directory)")

	root.AddCommand(
		a.taskCmd(),
		a.planCmd(),
		a.resultCmd(),
		a.signalCmd(),
		a.statusCmd(),
		a.cleanupCmd(),
		a.handoffCmd(),
		a.notifyCmd(),
		a.configCmd(),
	)
	return root
}

// setup loads configuration and builds the logger. It runs before every
// command.
func (a *app) setup() error {
	if a.root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		a.root = cwd
	}
	abs, err := filepath.Abs(a.root)
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}
	a.root = abs

	if err := a.initConfig(); err != nil {
		return err
	}

	if a.cfg.Logging.Enabled {
		logDir := filepath.Join(a.root, a.cfg.Coordination.DirName, "logs")
		logger, err := logging.NewLoggerWithRotation(logDir, a.cfg.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  a.cfg.Logging.MaxSizeMB,
			MaxBackups: a.cfg.Logging.MaxBackups,
			Compress:   a.cfg.Logging.Compress,
		})
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		a.logger = logger
	} else {
		a.logger = logging.NopLogger()
	}

	if a.cfg.EventLog.Enabled {
		a.events = eventlog.New(a.cfg.EventLog.EventLogDir(a.root))
	}
	return nil
}

func (a *app) initConfig() error {
	v := a.v
	// Set defaults first so they're available even without a config file
	config.SetDefaultsOn(v)

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(config.ConfigDir())
	}

	v.SetEnvPrefix(config.EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	// e.g., HANDOFF_COORDINATION_SENDER for coordination.sender
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || a.cfgFile != "" {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	// A project-local .handoff.yaml overrides the user config.
	local := filepath.Join(a.root, config.LocalConfigName+".yaml")
	if a.cfgFile == "" {
		if _, err := os.Stat(local); err == nil {
			v.SetConfigFile(local)
			if err := v.MergeInConfig(); err != nil {
				return fmt.Errorf("failed to read %s: %w", local, err)
			}
		}
	}

	cfg, err := config.LoadFrom(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

// broker builds a Broker for the project root with the configured options,
// and attaches the event log and notification forwarder to its bus.
func (a *app) broker(cmd *cobra.Command) *coordination.Broker {
	bus := event.NewBus(event.WithLogger(a.logger))
	if a.events != nil {
		eventlog.NewRecorder(bus, a.events, eventlog.BrokerLog, func(err error) {
			a.logger.Warn("event log append failed", "error", err)
		})
	}
	notify.NewForwarder(bus, a.sink(cmd), func(err error) {
		a.logger.Warn("notification failed", "error", err)
	})

	return coordination.New(a.root,
		coordination.WithDirName(a.cfg.Coordination.DirName),
		coordination.WithLogger(a.logger),
		coordination.WithBus(bus),
		coordination.WithSender(a.cfg.Coordination.Sender),
		coordination.WithQueueLocking(a.cfg.Coordination.LockQueues),
		coordination.WithLockWait(a.cfg.Coordination.LockWait()),
		coordination.WithUniqueIDs(a.cfg.Coordination.UniqueIDs),
	)
}

// sink returns the notification sink selected by configuration. Terminal
// notifications go to stderr so stdout stays machine-readable.
func (a *app) sink(cmd *cobra.Command) notify.Sink {
	errOut := cmd.ErrOrStderr()
	terminal := notify.NewTerminalSink(errOut, a.cfg.Notify.Bell, a.isTerminal(errOut))
	log := notify.NewLogSink(a.logger)

	switch a.cfg.Notify.Sink {
	case "terminal":
		return terminal
	case "log":
		return log
	case "both":
		return notify.MultiSink{terminal, log}
	}
	return notify.Discard
}

// parseValue parses a JSON argument of any kind.
func parseValue(arg string) (any, error) {
	v, err := store.ParseValue([]byte(arg))
	if err != nil {
		return nil, fmt.Errorf("payload must be valid JSON: %w", err)
	}
	return v, nil
}

// parsePayload parses a JSON object argument.
func parsePayload(arg string) (store.Payload, error) {
	p, err := store.ParsePayload([]byte(arg))
	if err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	return p, nil
}
