// Package filelock provides file locking and atomic write operations.
//
// The startup-params harness owns two process-wide shared resources for the
// duration of a run: the jsserver.properties path and the server's TCP port.
// A lock file guards against two harness runs racing for them; atomic writes
// keep the properties file from ever being observed half-written by the
// server process under test.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock wraps a flock file lock guarding a single harness run.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// NewRunLock creates a run lock backed by the lock file at path.
// The lock file is created if it does not exist.
func NewRunLock(path string) *RunLock {
	return &RunLock{
		flock: flock.New(path),
		path:  path,
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns false if another harness run currently holds it.
func (rl *RunLock) TryLock() (bool, error) {
	acquired, err := rl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", rl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (rl *RunLock) Unlock() error {
	if err := rl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", rl.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (rl *RunLock) Path() string {
	return rl.path
}

// AtomicWrite writes data to a file atomically using a temp file and rename.
// The server process under test reads jsserver.properties at startup; rename
// guarantees it sees either the previous contents or the new contents, never
// a partial write.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Temp file must be in the same directory as the target so the rename
	// stays on one filesystem and is atomic.
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// success; skip deferred cleanup
	tempFile = nil
	return nil
}
