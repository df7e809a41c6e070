package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/handoff/internal/coordination"
)

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	countStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

// writerIsTerminal reports whether w is an *os.File attached to a terminal.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// writeJSON prints v indented, matching the on-disk document style.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONLine prints v compactly on one line.
func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// warn prints a non-fatal problem to stderr.
func (a *app) warn(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if a.isTerminal(w) {
		msg = warnStyle.Render(msg)
	}
	_, _ = fmt.Fprintln(w, "Warning:", msg)
}

// renderStatus formats a status summary for humans. styled enables lipgloss
// colors.
func renderStatus(st coordination.Status, styled bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(style(headerStyle, "Coordination status"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n\n", style(labelStyle, "Directory:"), st.CoordinationDir)

	b.WriteString(style(labelStyle, "Pending tasks:"))
	b.WriteString("\n")
	if len(st.PendingTasks) == 0 {
		b.WriteString("  " + style(idleStyle, "none") + "\n")
	} else {
		types := make([]string, 0, len(st.PendingTasks))
		for t := range st.PendingTasks {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(&b, "  %-12s %s\n", t, count(style, st.PendingTasks[t]))
		}
	}

	fmt.Fprintf(&b, "%s %s\n", style(labelStyle, "Pending test plans:    "), count(style, st.PendingTestPlans))
	fmt.Fprintf(&b, "%s %s\n", style(labelStyle, "In-progress test plans:"), count(style, st.InProgressTestPlans))
	fmt.Fprintf(&b, "%s %s\n", style(labelStyle, "Results on record:     "), count(style, st.RecentResults))

	signals := style(idleStyle, "none")
	if len(st.OutstandingSignals) > 0 {
		labels := make([]string, 0, len(st.OutstandingSignals))
		for _, t := range st.OutstandingSignals {
			if sender := st.SignalSenders[t]; sender != "" {
				t += " (from " + sender + ")"
			}
			labels = append(labels, t)
		}
		signals = strings.Join(labels, ", ")
	}
	fmt.Fprintf(&b, "%s %s\n", style(labelStyle, "Outstanding signals:   "), signals)
	return b.String()
}

func count(style func(lipgloss.Style, string) string, n int) string {
	s := fmt.Sprintf("%d", n)
	if n == 0 {
		return style(idleStyle, s)
	}
	return style(countStyle, s)
}

// truncate shortens s to maxWidth visual columns, keeping escape sequences
// intact, and marks the cut with "...".
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// summaryWidth bounds the summary column of list tables.
const summaryWidth = 60

// summarize picks a one-line description from caller fields.
func summarize(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := fields[k].(string); ok && v != "" {
			return truncate(strings.Join(strings.Fields(v), " "), summaryWidth)
		}
	}
	return ""
}
