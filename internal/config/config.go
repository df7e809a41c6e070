package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// AppName names the config directory and the env prefix.
const AppName = "handoff"

// EnvPrefix is prepended to environment overrides, e.g.
// HANDOFF_COORDINATION_SENDER.
const EnvPrefix = "HANDOFF"

// LocalConfigName is the per-project config file looked up in the project
// root, without extension.
const LocalConfigName = ".handoff"

// Config represents the complete handoff configuration
type Config struct {
	Coordination CoordinationConfig `mapstructure:"coordination" yaml:"coordination"`
	Notify       NotifyConfig       `mapstructure:"notify" yaml:"notify"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	EventLog     EventLogConfig     `mapstructure:"eventlog" yaml:"eventlog"`
}

// CoordinationConfig controls the coordination directory and its documents
type CoordinationConfig struct {
	// DirName is the coordination directory under the project root (default: ".coordination")
	DirName string `mapstructure:"dir_name" yaml:"dir_name"`
	// Sender is recorded on outgoing signals. Empty means $USER, or "unknown".
	Sender string `mapstructure:"sender" yaml:"sender"`
	// UniqueIDs appends a random suffix to generated ids so two documents
	// created in the same second do not collide (default: true)
	UniqueIDs bool `mapstructure:"unique_ids" yaml:"unique_ids"`
	// LockQueues takes an advisory file lock around queue and plan updates (default: false)
	LockQueues bool `mapstructure:"lock_queues" yaml:"lock_queues"`
	// LockWaitMS bounds how long an update waits for a held file lock before
	// failing with a retryable error (default: 5000)
	LockWaitMS int `mapstructure:"lock_wait_ms" yaml:"lock_wait_ms"`
	// RetentionDays is the default age for cleanup (default: 7)
	RetentionDays int `mapstructure:"retention_days" yaml:"retention_days"`
}

// NotifyConfig controls where coordination notifications go
type NotifyConfig struct {
	// Sink selects the delivery target.
	// Options: "terminal", "log", "both", "none"
	Sink string `mapstructure:"sink" yaml:"sink"`
	// Bell rings the terminal bell with terminal notifications (default: true)
	Bell bool `mapstructure:"bell" yaml:"bell"`
}

// LoggingConfig controls the structured debug log
type LoggingConfig struct {
	// Enabled writes a log file under <coordination dir>/logs (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the minimum level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// MaxSizeMB is the size at which the log file is rotated (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is how many rotated files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// EventLogConfig controls the JSONL log of hook invocations and broker events
type EventLogConfig struct {
	// Enabled records broker events and handoff inputs (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Dir is the log directory, relative to the project root unless absolute (default: "logs")
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Coordination: CoordinationConfig{
			DirName:       ".coordination",
			Sender:        "",
			UniqueIDs:     true,
			LockQueues:    false,
			LockWaitMS:    5000,
			RetentionDays: 7,
		},
		Notify: NotifyConfig{
			Sink: "terminal",
			Bell: true,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		EventLog: EventLogConfig{
			Enabled: true,
			Dir:     "logs",
		},
	}
}

// LockWait returns the lock wait bound as a time.Duration
func (c *CoordinationConfig) LockWait() time.Duration {
	return time.Duration(c.LockWaitMS) * time.Millisecond
}

// EventLogDir resolves the event log directory against projectRoot
func (c *EventLogConfig) EventLogDir(projectRoot string) string {
	if filepath.IsAbs(c.Dir) {
		return c.Dir
	}
	return filepath.Join(projectRoot, c.Dir)
}

// SetDefaultsOn registers default values on v
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	// Coordination defaults
	v.SetDefault("coordination.dir_name", defaults.Coordination.DirName)
	v.SetDefault("coordination.sender", defaults.Coordination.Sender)
	v.SetDefault("coordination.unique_ids", defaults.Coordination.UniqueIDs)
	v.SetDefault("coordination.lock_queues", defaults.Coordination.LockQueues)
	v.SetDefault("coordination.lock_wait_ms", defaults.Coordination.LockWaitMS)
	v.SetDefault("coordination.retention_days", defaults.Coordination.RetentionDays)

	// Notify defaults
	v.SetDefault("notify.sink", defaults.Notify.Sink)
	v.SetDefault("notify.bell", defaults.Notify.Bell)

	// Logging defaults
	v.SetDefault("logging.enabled", defaults.Logging.Enabled)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.compress", defaults.Logging.Compress)

	// Event log defaults
	v.SetDefault("eventlog.enabled", defaults.EventLog.Enabled)
	v.SetDefault("eventlog.dir", defaults.EventLog.Dir)
}

// LoadFrom reads and validates the configuration held by v
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	// Fall back to ~/.config/handoff
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigFile returns the path to the user config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
