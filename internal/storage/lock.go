package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// Lock takes an exclusive advisory lock on path+".lock", waiting until ctx
// is done. The returned function releases it.
func Lock(ctx context.Context, path string) (func() error, error) {
	fl := flock.New(path + ".lock")

	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: not acquired", path)
	}

	return fl.Unlock, nil
}
