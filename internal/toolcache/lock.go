package toolcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFile is the name of the advisory lock file in the cache root.
const LockFile = ".carvel-setup.lock"

// lockRetryDelay is how often a held lock is re-tried.
const lockRetryDelay = 100 * time.Millisecond

// ErrLocked is returned when another process holds the cache lock until
// the context ends.
var ErrLocked = errors.New("tool cache is locked by another process")

// Lock is an exclusive advisory lock on a cache root.
type Lock struct {
	flock *flock.Flock
}

// AcquireLock blocks until it holds the lock on root or ctx ends.
func AcquireLock(ctx context.Context, root string) (*Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}

	fl := flock.New(filepath.Join(root, LockFile))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, fl.Path())
		}
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, fl.Path())
	}

	return &Lock{flock: fl}, nil
}

// Release releases the lock. The lock file stays in place.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.flock.Path(), err)
	}
	return nil
}
