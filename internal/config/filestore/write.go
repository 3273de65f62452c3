package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	// lockTimeout bounds how long a save waits for another writer.
	lockTimeout   = 5 * time.Second
	lockRetryWait = 20 * time.Millisecond
)

// lockPath returns the path to the lock file used for flock-based coordination.
func lockPath(path string) string {
	return path + ".lock"
}

// writeFile takes an exclusive lock on path's lock file and atomically
// replaces path with data. The lock is released on every return path.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	fileLock := flock.New(lockPath(path))
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, lockRetryWait)
	if err != nil {
		return fmt.Errorf("acquiring config lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquiring config lock: timeout after %v", lockTimeout)
	}
	defer fileLock.Unlock()

	return atomicWrite(path, data)
}
