package store

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/handoff/internal/errors"
	"github.com/Iron-Ham/handoff/internal/logging"
)

// DefaultDirName is the coordination directory created under a project root.
const DefaultDirName = ".coordination"

// DefaultLockWait is how long Update waits for a held file lock by default.
const DefaultLockWait = 5 * time.Second

// lockRetryInterval is the pause between attempts on a held file lock.
const lockRetryInterval = 20 * time.Millisecond

// Subdirectories of the coordination directory.
const (
	TasksDir   = "tasks"
	PlansDir   = "test_plans"
	ResultsDir = "results"
)

// Store is a handle on one coordination directory. It holds no cached
// document state; every call goes to the filesystem.
type Store struct {
	dir       string
	logger    *logging.Logger
	locking   bool
	lockWait  time.Duration
	uniqueIDs bool
	clock     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocking enables an advisory flock(2) around every Update, so that
// read-modify-write cycles are serialized across processes as well as
// goroutines.
func WithLocking(enabled bool) Option {
	return func(s *Store) { s.locking = enabled }
}

// WithLockWait bounds how long Update retries a file lock held by another
// process. Zero means a single attempt.
func WithLockWait(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.lockWait = d
		}
	}
}

// WithUniqueIDs controls whether generated document ids carry a random
// suffix after the timestamp. Without it, two documents created in the same
// second get the same id and the later write replaces the earlier one.
func WithUniqueIDs(enabled bool) Option {
	return func(s *Store) { s.uniqueIDs = enabled }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.clock = now
		}
	}
}

// New returns a Store rooted at dir. The directory is created lazily by the
// first write.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:       dir,
		logger:    logging.NopLogger(),
		lockWait:  DefaultLockWait,
		uniqueIDs: true,
		clock:     time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("store")
	return s
}

// Open returns a Store for the coordination directory of a project.
// An empty dirName means DefaultDirName.
func Open(projectRoot, dirName string, opts ...Option) *Store {
	if dirName == "" {
		dirName = DefaultDirName
	}
	return New(filepath.Join(projectRoot, dirName), opts...)
}

// Dir returns the coordination directory.
func (s *Store) Dir() string { return s.dir }

// Path joins elem onto the coordination directory.
func (s *Store) Path(elem ...string) string {
	return filepath.Join(append([]string{s.dir}, elem...)...)
}

// Logger returns the store's logger so components can derive their own.
func (s *Store) Logger() *logging.Logger { return s.logger }

// ReadJSON decodes the document at path into v.
func (s *Store) ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewStoreError("read document", errors.ErrDocumentNotFound).WithOp("read").WithPath(path).
				WithSeverity(errors.SeverityDebug).WithRetryable(false)
		}
		return errors.NewStoreError("read document", err).WithOp("read").WithPath(path)
	}

	if err := decodeStrict(data, v); err != nil {
		return errors.NewStoreError("decode document", errors.Join(errors.ErrDocumentCorrupt, err)).
			WithOp("decode").WithPath(path).WithSeverity(errors.SeverityWarning).WithRetryable(false)
	}
	return nil
}

// WriteJSON encodes v with two-space indentation and atomically replaces the
// document at path, creating parent directories as needed.
func (s *Store) WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.NewStoreError("encode document", err).WithOp("encode").WithPath(path).WithRetryable(false)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewStoreError("create directory", err).WithOp("mkdir").WithPath(dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.NewStoreError("create temp file", err).WithOp("write").WithPath(path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(bytes.TrimRight(buf.Bytes(), "\n")); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.NewStoreError("write temp file", err).WithOp("write").WithPath(path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.NewStoreError("close temp file", err).WithOp("write").WithPath(path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		s.logger.Debug("chmod temp file failed", "path", tmpName, "error", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return errors.NewStoreError("rename temp file", err).WithOp("rename").WithPath(path)
	}
	return nil
}

// Remove deletes the document at path. A missing document is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.NewStoreError("remove document", err).WithOp("remove").WithPath(path)
	}
	return nil
}

// Claim atomically moves the document at path to a private temporary name
// in the same directory and returns that name. Of several concurrent
// claimers, across processes too, exactly one succeeds; the others get
// ErrDocumentNotFound. The caller owns the claimed file and must remove it.
func (s *Store) Claim(path string) (string, error) {
	claimed := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+shortUUID()+".tmp")
	if err := os.Rename(path, claimed); err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewStoreError("claim document", errors.ErrDocumentNotFound).WithOp("claim").WithPath(path)
		}
		return "", errors.NewStoreError("claim document", err).WithOp("claim").WithPath(path)
	}
	return claimed, nil
}

// Exists reports whether a regular file exists at path.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// List returns the paths of regular files directly inside dir whose base
// name matches the glob pattern, sorted by name. A missing directory yields
// an empty list. Temporary files left by an interrupted WriteJSON are never
// returned.
func (s *Store) List(dir, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.NewValidationError("invalid file pattern").WithField("pattern").WithValue(pattern).WithCause(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStoreError("list directory", err).WithOp("list").WithPath(dir)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || isTempName(name) || !g.Match(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// TempFiles returns the temporary files directly inside dir, sorted by
// name: those of a WriteJSON or a Claim that never finished. A missing
// directory yields an empty list.
func (s *Store) TempFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStoreError("list directory", err).WithOp("list").WithPath(dir)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && isTempName(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Stat returns file info for path.
func (s *Store) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func isTempName(name string) bool {
	return len(name) > 0 && name[0] == '.' && filepath.Ext(name) == ".tmp"
}

// Update runs fn while holding the lock for path: an in-process mutex, plus
// an advisory file lock when the store was opened WithLocking. fn typically
// reads the document, modifies it and writes it back. A file lock still held
// by another process after the lock wait fails with a retryable error that
// matches errors.ErrLockHeld.
func (s *Store) Update(path string, fn func() error) error {
	mu := s.pathLock(path)
	mu.Lock()
	defer mu.Unlock()

	if s.locking {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.NewStoreError("create directory", err).WithOp("mkdir").WithPath(filepath.Dir(path))
		}
		fl := NewFileLock(path)
		if err := s.acquire(fl); err != nil {
			return errors.NewStoreError("acquire lock", err).
				WithOp("lock").
				WithPath(path).
				WithRetryable(errors.IsRetryable(err))
		}
		defer func() {
			if err := fl.Unlock(); err != nil {
				s.logger.Warn("release lock failed", "path", path, "error", err)
			}
		}()
	}

	return fn()
}

// acquire retries fl until it is taken or the lock wait runs out.
func (s *Store) acquire(fl *FileLock) error {
	deadline := time.Now().Add(s.lockWait)
	for {
		err := fl.TryLock()
		if err == nil || !errors.Is(err, errors.ErrLockHeld) || !time.Now().Before(deadline) {
			return err
		}
		time.Sleep(lockRetryInterval)
	}
}

func (s *Store) pathLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.locks[path]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[path] = mu
	}
	return mu
}
