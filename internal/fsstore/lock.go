package fsstore

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

const lockRetryWait = 25 * time.Millisecond

// WithLock serializes fn against every other process holding the same lock
// path. The lock file itself is left in place between holders.
func WithLock(ctx context.Context, lockPath string, fn func() error) error {
	normalizedPath, err := normalizePath(lockPath)
	if err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := EnsureDir(filepath.Dir(normalizedPath), defaultDirPerm); err != nil {
		return err
	}
	return withLockFile(ctx, normalizedPath, fn)
}

func waitForLockRetry(ctx context.Context, lockPath string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: wait for %s: %v", ErrLockUnavailable, lockPath, ctx.Err())
	case <-time.After(lockRetryWait):
		return nil
	}
}
