// Package retention removes old plan and result documents.
//
// Age is judged by file modification time, not by any timestamp inside the
// document. Queues and signals are never swept. Temporary files left behind
// by an interrupted write or signal claim are swept once they are older than
// both the retention window and TempGrace.
package retention

import (
	"time"

	"github.com/Iron-Ham/handoff/internal/logging"
	"github.com/Iron-Ham/handoff/internal/store"
)

// DefaultDays is the retention window used when none is configured.
const DefaultDays = 7

// Day is the unit of retention windows given in days.
const Day = 24 * time.Hour

// TempGrace is the minimum age of a temporary file before it is swept, so
// that a write still in flight is never removed.
const TempGrace = time.Hour

// Candidate is a document eligible for removal.
type Candidate struct {
	Path    string
	ModTime time.Time
}

// Sweeper deletes aged documents from a store.
type Sweeper struct {
	store  *store.Store
	logger *logging.Logger
}

// NewSweeper returns a Sweeper for s.
func NewSweeper(s *store.Store) *Sweeper {
	return &Sweeper{
		store:  s,
		logger: s.Logger().WithComponent("retention"),
	}
}

// Candidates returns the plan and result documents last modified before
// now minus maxAge, without removing anything.
func (w *Sweeper) Candidates(maxAge time.Duration) []Candidate {
	cutoff := w.store.Now().Add(-maxAge)

	var out []Candidate
	for _, dir := range []string{store.PlansDir, store.ResultsDir} {
		paths, err := w.store.List(w.store.Path(dir), "*.json")
		if err != nil {
			w.logger.Failure("list documents failed", err, "dir", dir)
			continue
		}
		for _, path := range paths {
			info, err := w.store.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				out = append(out, Candidate{Path: path, ModTime: info.ModTime()})
			}
		}
	}
	return out
}

// Leftovers returns the temporary files anywhere in the coordination
// directory last modified before now minus the larger of maxAge and
// TempGrace.
func (w *Sweeper) Leftovers(maxAge time.Duration) []Candidate {
	cutoff := w.store.Now().Add(-max(maxAge, TempGrace))

	var out []Candidate
	for _, dir := range []string{"", store.TasksDir, store.PlansDir, store.ResultsDir} {
		paths, err := w.store.TempFiles(w.store.Path(dir))
		if err != nil {
			w.logger.Failure("list temporary files failed", err, "dir", dir)
			continue
		}
		for _, path := range paths {
			info, err := w.store.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				out = append(out, Candidate{Path: path, ModTime: info.ModTime()})
			}
		}
	}
	return out
}

// Cleanup removes the documents Candidates reports, with their lock files,
// and returns how many documents were removed. It also removes the files
// Leftovers reports, which are not counted. Files that cannot be removed are
// skipped.
func (w *Sweeper) Cleanup(maxAge time.Duration) int {
	removed := 0
	for _, c := range w.Candidates(maxAge) {
		if err := w.store.Remove(c.Path); err != nil {
			w.logger.Failure("remove aged document failed", err, "path", c.Path)
			continue
		}
		removed++
		if err := w.store.Remove(store.NewFileLock(c.Path).Path()); err != nil {
			w.logger.Failure("remove lock file failed", err, "path", c.Path)
		}
	}
	if removed > 0 {
		w.logger.Info("removed aged documents", "count", removed, "max_age", maxAge.String())
	}

	leftovers := 0
	for _, c := range w.Leftovers(maxAge) {
		if err := w.store.Remove(c.Path); err != nil {
			w.logger.Failure("remove temporary file failed", err, "path", c.Path)
			continue
		}
		leftovers++
	}
	if leftovers > 0 {
		w.logger.Info("removed leftover temporary files", "count", leftovers)
	}
	return removed
}
