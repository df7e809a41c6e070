// Package eventlog keeps append-only JSONL logs of hook invocations and
// broker events. Each named log is one file, <dir>/<name>.jsonl, holding one
// JSON object per line. Lines that fail to parse are skipped on read.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Iron-Ham/handoff/internal/event"
)

// DefaultDir is the log directory, relative to the project root.
const DefaultDir = "logs"

// Well-known log names.
const (
	HandoffLog = "handoff"
	BrokerLog  = "broker"
	NotifyLog  = "notifications"
)

const fileExt = ".jsonl"

// maxLineSize bounds a single entry when reading.
const maxLineSize = 1 << 20

// Entry is one line of an event log.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Kind      string         `json:"kind"`
	Data      map[string]any `json:"data,omitempty"`
}

// Log appends to and reads JSONL files in one directory.
type Log struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New returns a Log writing under dir. The directory is created on first
// append.
func New(dir string) *Log {
	return &Log{dir: dir, now: time.Now}
}

// Dir returns the log directory.
func (l *Log) Dir() string { return l.dir }

// Path returns the file for the named log.
func (l *Log) Path(name string) string {
	return filepath.Join(l.dir, name+fileExt)
}

// Append writes one entry to the named log. A zero Timestamp is filled in.
func (l *Log) Append(name string, e Entry) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("eventlog: invalid log name %q", name)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	e.Timestamp = e.Timestamp.UTC()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("eventlog: marshal entry: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("eventlog: create directory: %w", err)
	}
	f, err := os.OpenFile(l.Path(name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("eventlog: open log for append: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("eventlog: append entry: %w", err)
	}
	return f.Close()
}

// Read returns every parseable entry of the named log in file order.
// A missing log yields no entries and no error.
func (l *Log) Read(name string) ([]Entry, error) {
	f, err := os.Open(l.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("eventlog: open log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: scan log: %w", err)
	}
	return entries, nil
}

// Recorder appends every event published on a bus to one log.
type Recorder struct {
	log   *Log
	name  string
	bus   *event.Bus
	subID string
	onErr func(error)
}

// NewRecorder subscribes to all events on bus and records them to the named
// log. onErr, if non-nil, receives append failures.
func NewRecorder(bus *event.Bus, l *Log, name string, onErr func(error)) *Recorder {
	r := &Recorder{log: l, name: name, bus: bus, onErr: onErr}
	r.subID = bus.SubscribeAll(r.record)
	return r
}

// Stop unsubscribes the recorder.
func (r *Recorder) Stop() {
	r.bus.Unsubscribe(r.subID)
}

func (r *Recorder) record(e event.Event) {
	err := r.log.Append(r.name, Entry{
		Timestamp: e.Timestamp(),
		Kind:      e.EventType(),
		Data:      describe(e),
	})
	if err != nil && r.onErr != nil {
		r.onErr(err)
	}
}

func describe(e event.Event) map[string]any {
	switch ev := e.(type) {
	case event.TaskEnqueuedEvent:
		return map[string]any{"session_type": ev.SessionType, "task_id": ev.TaskID}
	case event.TaskCompletedEvent:
		return map[string]any{"session_type": ev.SessionType, "task_id": ev.TaskID}
	case event.PlanCreatedEvent:
		return map[string]any{"file": ev.Path}
	case event.PlanStatusChangedEvent:
		return map[string]any{"file": ev.Path, "status": ev.Status}
	case event.ResultRecordedEvent:
		return map[string]any{"file": ev.Path, "plan_id": nullable(ev.PlanID)}
	case event.SignalSentEvent:
		return map[string]any{"signal_type": ev.SignalType, "sender": ev.Sender, "data": ev.Data}
	case event.SignalReceivedEvent:
		return map[string]any{"signal_type": ev.SignalType, "sender": ev.Sender}
	case event.RetentionSweptEvent:
		return map[string]any{"removed": ev.Removed, "max_age": ev.MaxAge.String()}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
