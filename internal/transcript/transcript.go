// Package transcript derives a test plan from the tail of a session
// transcript.
//
// A transcript is a JSONL file written by the agent runtime, one message per
// line. When the last few lines talk about testing, their text becomes the
// plan content and the final line's timestamp and session id (if it parses)
// are carried along.
package transcript

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/Iron-Ham/handoff/internal/store"
)

// Source is the plan "source" value for transcript-derived plans.
const Source = "conversation_transcript"

// TailLines is how many trailing lines are inspected.
const TailLines = 10

// Keywords mark a transcript tail as describing test work.
var Keywords = []string{"test plan", "testing", "test cases", "validation", "verify", "check"}

// maxLineSize bounds a single transcript line.
const maxLineSize = 4 << 20

// ExtractTestPlan reads the transcript at path and returns plan fields when
// its tail mentions testing. now supplies extracted_at when the last line has
// no timestamp.
func ExtractTestPlan(path string, now time.Time) (store.Payload, bool) {
	lines, err := tail(path, TailLines)
	if err != nil || len(lines) == 0 {
		return nil, false
	}

	content := strings.ToLower(strings.Join(lines, "\n") + "\n")
	if !mentionsTesting(content) {
		return nil, false
	}

	fields := store.Payload{
		"source":       Source,
		"content":      content,
		"extracted_at": store.FormatTime(now),
		"session_id":   nil,
	}

	var last map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &last); err == nil && last != nil {
		fields["extracted_at"] = last["timestamp"]
		fields["session_id"] = last["session_id"]
	}
	return fields, true
}

func mentionsTesting(content string) bool {
	for _, k := range Keywords {
		if strings.Contains(content, k) {
			return true
		}
	}
	return false
}

// tail returns the last n lines of the file, keeping a ring of n.
func tail(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if len(ring) == n {
			ring = append(ring[1:], scanner.Text())
			continue
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ring, nil
}
