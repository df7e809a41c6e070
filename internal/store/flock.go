package store

import (
	"fmt"
	"os"
	"syscall"

	"github.com/Iron-Ham/handoff/internal/errors"
)

// lockSuffix is appended to a document path to name its lock file.
const lockSuffix = ".lock"

// FileLock is an advisory, cross-process exclusive lock on a document,
// implemented with flock(2) on a sibling "<document>.lock" file. Sessions
// that do not take the lock are not prevented from writing.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock returns an unlocked FileLock guarding documentPath.
func NewFileLock(documentPath string) *FileLock {
	return &FileLock{path: documentPath + lockSuffix}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string { return fl.path }

// TryLock attempts the lock without blocking. It returns errors.ErrLockHeld
// when another holder has it.
func (fl *FileLock) TryLock() error {
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if err == syscall.EWOULDBLOCK {
			return errors.ErrLockHeld
		}
		return fmt.Errorf("flock: %w", err)
	}
	fl.file = f
	return nil
}

// Unlock releases the lock. Unlocking an unheld lock is a no-op.
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}

	f := fl.file
	fl.file = nil
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		_ = f.Close()
		return fmt.Errorf("funlock: %w", err)
	}
	return f.Close()
}
