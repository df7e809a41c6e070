package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.max_size_mb")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidNotifySinks returns the list of valid notification sinks
func ValidNotifySinks() []string {
	return []string{"terminal", "log", "both", "none"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateCoordination()...)
	errors = append(errors, c.validateNotify()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateEventLog()...)

	return errors
}

// validateCoordination validates the CoordinationConfig
func (c *Config) validateCoordination() []ValidationError {
	var errors []ValidationError

	dir := c.Coordination.DirName
	switch {
	case dir == "":
		errors = append(errors, ValidationError{
			Field:   "coordination.dir_name",
			Value:   dir,
			Message: "must not be empty",
		})
	case filepath.IsAbs(dir) || strings.ContainsAny(dir, `/\`) || dir == "." || dir == "..":
		errors = append(errors, ValidationError{
			Field:   "coordination.dir_name",
			Value:   dir,
			Message: "must be a single directory name",
		})
	}

	if c.Coordination.RetentionDays < 0 {
		errors = append(errors, ValidationError{
			Field:   "coordination.retention_days",
			Value:   c.Coordination.RetentionDays,
			Message: "must be non-negative",
		})
	}

	if c.Coordination.LockWaitMS < 0 {
		errors = append(errors, ValidationError{
			Field:   "coordination.lock_wait_ms",
			Value:   c.Coordination.LockWaitMS,
			Message: "must be non-negative",
		})
	}

	if strings.ContainsAny(c.Coordination.Sender, "\n\r") {
		errors = append(errors, ValidationError{
			Field:   "coordination.sender",
			Value:   c.Coordination.Sender,
			Message: "must be a single line",
		})
	}

	return errors
}

// validateNotify validates the NotifyConfig
func (c *Config) validateNotify() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidNotifySinks(), c.Notify.Sink) {
		errors = append(errors, ValidationError{
			Field:   "notify.sink",
			Value:   c.Notify.Sink,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidNotifySinks(), ", ")),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateEventLog validates the EventLogConfig
func (c *Config) validateEventLog() []ValidationError {
	var errors []ValidationError

	if c.EventLog.Enabled && strings.TrimSpace(c.EventLog.Dir) == "" {
		errors = append(errors, ValidationError{
			Field:   "eventlog.dir",
			Value:   c.EventLog.Dir,
			Message: "must be set when the event log is enabled",
		})
	}

	return errors
}
