package notify

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/handoff/internal/logging"
)

// Sink delivers notifications.
type Sink interface {
	Notify(n Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification) error

// Notify calls f.
func (f SinkFunc) Notify(n Notification) error { return f(n) }

// TerminalSink prints notifications to a writer and rings the terminal
// bell. When styled, the message is colored by priority.
type TerminalSink struct {
	mu     sync.Mutex
	w      io.Writer
	bell   bool
	styled bool
}

// NewTerminalSink returns a TerminalSink writing to w.
func NewTerminalSink(w io.Writer, bell, styled bool) *TerminalSink {
	return &TerminalSink{w: w, bell: bell, styled: styled}
}

var priorityStyles = map[Priority]lipgloss.Style{
	PriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	PriorityNormal:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	PriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	PriorityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

// Notify writes the notification.
func (s *TerminalSink) Notify(n Notification) error {
	line := fmt.Sprintf("%s (Priority: %s)", n.Message, n.Priority)
	if s.styled {
		if style, ok := priorityStyles[n.Priority]; ok {
			line = style.Render(line)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "\n%s\n", line); err != nil {
		return err
	}
	if s.bell {
		if _, err := io.WriteString(s.w, "\a"); err != nil {
			return err
		}
	}
	return nil
}

// LogSink records notifications in the structured log.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink returns a LogSink writing through l.
func NewLogSink(l *logging.Logger) *LogSink {
	return &LogSink{logger: l.WithComponent("notify")}
}

// Notify logs the notification, at WARN for critical priority and INFO
// otherwise.
func (s *LogSink) Notify(n Notification) error {
	args := []any{"kind", n.Kind, "priority", string(n.Priority), "message", n.Message}
	if n.Priority == PriorityCritical {
		s.logger.Warn("notification", args...)
	} else {
		s.logger.Info("notification", args...)
	}
	return nil
}

// MultiSink delivers to every sink and joins their errors.
type MultiSink []Sink

// Notify delivers n to each sink in order.
func (m MultiSink) Notify(n Notification) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Notify(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Notification) error { return nil })
