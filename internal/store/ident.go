package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the timestamp format written into every document. It is
// always rendered in UTC with a fixed-width fraction, so lexicographic order
// of two timestamps written by this package equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.clock() }

// Timestamp formats the current time with TimeLayout.
func (s *Store) Timestamp() string { return FormatTime(s.clock()) }

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NewID returns "<prefix>_<unix seconds>", followed by "_<8 hex chars>" when
// the store generates unique ids.
func (s *Store) NewID(prefix string) string {
	id := fmt.Sprintf("%s_%d", prefix, s.clock().Unix())
	if s.uniqueIDs {
		id += "_" + shortUUID()
	}
	return id
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
