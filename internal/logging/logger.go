package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Iron-Ham/handoff/internal/errors"
)

// Log levels supported by the logger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// FileName is the log file created inside the log directory.
const FileName = "handoff.log"

// Logger provides structured logging with context propagation.
// It is safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	out    *output
	attrs  []slog.Attr
}

// output is shared by a Logger and all of its children.
type output struct {
	mu     sync.Mutex
	closer io.Closer
}

// NewLoggerWithRotation creates a Logger that appends JSON lines to
// {logDir}/handoff.log and rotates the file once it grows past
// cfg.MaxSizeMB. If logDir is empty, logs are written to stderr.
func NewLoggerWithRotation(logDir string, level string, cfg RotationConfig) (*Logger, error) {
	if logDir == "" {
		return newLogger(os.Stderr, nil, level), nil
	}

	rw, err := NewRotatingWriter(filepath.Join(logDir, FileName), cfg)
	if err != nil {
		return nil, err
	}
	return newLogger(rw, rw, level), nil
}

func newLogger(w io.Writer, closer io.Closer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{
		logger: slog.New(handler),
		out:    &output{closer: closer},
	}
}

// parseLevel converts a string log level to slog.Level.
// Defaults to INFO if the level string is not recognized.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithSessionType returns a child Logger tagged with the session type
// (e.g. "coding", "testing") that produced the log entries.
func (l *Logger) WithSessionType(sessionType string) *Logger {
	return l.withAttr(slog.String("session_type", sessionType))
}

// WithComponent returns a child Logger tagged with a broker component name
// such as "queue" or "signal".
func (l *Logger) WithComponent(component string) *Logger {
	return l.withAttr(slog.String("component", component))
}

// With returns a new Logger with arbitrary key-value attributes.
// Keys and values are provided as alternating arguments.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}

	newAttrs := make([]slog.Attr, 0, len(l.attrs)+len(args)/2)
	newAttrs = append(newAttrs, l.attrs...)
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		newAttrs = append(newAttrs, slog.Any(key, args[i+1]))
	}

	return &Logger{logger: l.logger, out: l.out, attrs: newAttrs}
}

func (l *Logger) withAttr(attr slog.Attr) *Logger {
	newAttrs := make([]slog.Attr, len(l.attrs)+1)
	copy(newAttrs, l.attrs)
	newAttrs[len(l.attrs)] = attr
	return &Logger{logger: l.logger, out: l.out, attrs: newAttrs}
}

// Debug logs a message at DEBUG level with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

// Info logs a message at INFO level with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

// Warn logs a message at WARN level with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

// Error logs a message at ERROR level with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

// Failure logs err under msg at the level matching its severity: debug and
// info severities log at DEBUG, warnings at WARN, everything else at ERROR.
// Errors without a severity log at ERROR.
func (l *Logger) Failure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if errors.IsRetryable(err) {
		args = append(args, "retryable", true)
	}
	switch errors.GetSeverity(err) {
	case errors.SeverityDebug, errors.SeverityInfo:
		l.log(slog.LevelDebug, msg, args...)
	case errors.SeverityWarning:
		l.log(slog.LevelWarn, msg, args...)
	default:
		l.log(slog.LevelError, msg, args...)
	}
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	allArgs := make([]any, 0, len(l.attrs)*2+len(args))
	for _, attr := range l.attrs {
		allArgs = append(allArgs, attr.Key, attr.Value.Any())
	}
	allArgs = append(allArgs, args...)

	l.logger.Log(context.Background(), level, msg, allArgs...)
}

// Close flushes and closes the underlying log file. Child loggers share the
// file, so closing any of them closes all of them. Closing a stderr or nop
// logger is a no-op.
func (l *Logger) Close() error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if l.out.closer == nil {
		return nil
	}
	err := l.out.closer.Close()
	l.out.closer = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// NopLogger returns a Logger that discards all log output.
func NopLogger() *Logger {
	return newLogger(io.Discard, nil, LevelError)
}
