// Package filelock provides the locked, atomic file operations used to
// persist the launcher store: an exclusive inter-process lock, a
// temp-file-and-rename write, and a create-only seed copy.
package filelock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileLock wraps a flock file lock guarding one target file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock backed by the file at path.
// The lock file is created on first Lock.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// For returns the lock that guards target (target + ".lock").
func For(target string) *FileLock {
	return NewFileLock(target + ".lock")
}

// Lock acquires an exclusive lock, blocking until it is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock attempts to acquire the lock without blocking.
// Returns false if another process holds it.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// AtomicWrite replaces path with data. The data goes to a temporary file in
// the same directory which is synced and then renamed over path, so readers
// see either the previous document or the new one. On failure the previous
// file is left untouched and the temporary file is removed.
func AtomicWrite(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	committed = true
	return nil
}

// LockAndWrite holds the lock for path while performing an AtomicWrite.
func LockAndWrite(path string, data []byte) error {
	return LockAndWriteNotify(path, data, nil)
}

// LockAndWriteNotify is LockAndWrite that calls onWait with the lock file
// path before blocking on a lock held elsewhere. onWait may be nil.
func LockAndWriteNotify(path string, data []byte, onWait func(lockPath string)) error {
	lock := For(path)
	acquired, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !acquired {
		if onWait != nil {
			onWait(lock.Path())
		}
		if err := lock.Lock(); err != nil {
			return err
		}
	}
	defer lock.Unlock()

	return AtomicWrite(path, data, 0644)
}

// SeedFile writes data to path only if path does not exist yet. It reports
// whether the file was written. Two processes seeding concurrently are
// serialized by the lock; the loser sees the winner's file and returns false.
func SeedFile(path string, data []byte) (bool, error) {
	lock := For(path)
	if err := lock.Lock(); err != nil {
		return false, err
	}
	defer lock.Unlock()

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := AtomicWrite(path, data, 0644); err != nil {
		return false, err
	}
	return true, nil
}
