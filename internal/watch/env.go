package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/xmazu/envedit/internal/envfile"
)

// Change is the outcome of reloading a watched env file. In Diff the
// previous snapshot is the "other" side: ExtraInCurrent holds added keys,
// MissingInCurrent removed keys and Changed maps each key to its new
// (Current) and old (Other) value.
type Change struct {
	Path string
	Diff *envfile.DiffResult
	// Err is set when the file could not be reloaded; the previous
	// snapshot is kept.
	Err error
}

// Env reloads the env file at path after every change on disk and passes
// the difference from the last good snapshot to fn. Changes that leave the
// values as they were are not reported. Env blocks until ctx is done.
func Env(ctx context.Context, path string, fn func(Change)) error {
	return EnvWith(ctx, path, DefaultDebounce, fn)
}

func EnvWith(ctx context.Context, path string, debounce time.Duration, fn func(Change)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	prev := map[string]string{}
	if f, err := envfile.Load(abs); err == nil {
		prev = f.ToMap()
	}

	fw, err := NewFileWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()
	fw.Debounce = debounce

	if err := fw.Add(abs); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	changes := fw.Start()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-fw.Errors():
			fn(Change{Path: abs, Err: err})
		case <-changes:
			f, err := envfile.Load(abs)
			if err != nil {
				fn(Change{Path: abs, Err: err})
				continue
			}
			next := f.ToMap()
			diff := envfile.DiffMaps(next, prev)
			prev = next
			if diff.Empty() {
				continue
			}
			fn(Change{Path: abs, Diff: diff})
		}
	}
}
