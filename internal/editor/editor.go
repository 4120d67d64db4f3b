// Package editor runs one locked edit of an env file: load, change, then
// either save and journal the change or, in dry-run mode, only report the
// diff.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/logging"
	"github.com/xmazu/envedit/internal/storage"
)

type options struct {
	atomic  bool
	dryRun  bool
	journal bool
	create  bool
	source  string
	tool    string
}

type Option func(*options)

// DryRun computes the change without writing the file or the journal.
func DryRun(v bool) Option {
	return func(o *options) {
		o.dryRun = v
	}
}

func Atomic(v bool) Option {
	return func(o *options) {
		o.atomic = v
	}
}

func Journal(v bool) Option {
	return func(o *options) {
		o.journal = v
	}
}

// Create starts from an empty document when the file does not exist.
func Create(v bool) Option {
	return func(o *options) {
		o.create = v
	}
}

// Source is recorded in the journal, e.g. the file values were merged from.
func Source(s string) Option {
	return func(o *options) {
		o.source = s
	}
}

// Tool is recorded in the journal for edits made through the MCP server.
func Tool(s string) Option {
	return func(o *options) {
		o.tool = s
	}
}

// Result describes an edit.
type Result struct {
	Path string
	// Keys are the keys the edit function reported as touched.
	Keys []string
	// Diff is a unified diff of the file before and after the edit. It is
	// empty when nothing changed.
	Diff    string
	Changed bool
	DryRun  bool
}

// EditFunc changes f and returns the keys it touched.
type EditFunc func(f *envfile.File) ([]string, error)

// Edit holds the lock on path while it loads the file, applies fn and
// saves the result. Nothing is written when fn fails, when the document is
// unchanged, or in dry-run mode. A failed journal write is logged and does
// not fail the edit.
func Edit(ctx context.Context, path string, op journal.Op, fn EditFunc, opts ...Option) (*Result, error) {
	o := options{atomic: true, journal: true}
	for _, opt := range opts {
		opt(&o)
	}

	unlock, err := storage.Lock(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			logging.L().Warn("release lock", "file", path, "err", err)
		}
	}()

	f, err := open(path, o.create)
	if err != nil {
		return nil, err
	}
	before := f.Preview()

	keys, err := fn(f)
	if err != nil {
		return nil, err
	}

	after := f.Preview()
	res := &Result{
		Path:    path,
		Keys:    keys,
		Changed: before != after,
		DryRun:  o.dryRun,
	}
	if res.Changed {
		res.Diff = Diff(path, before, after)
	}

	if o.dryRun || !res.Changed {
		logging.L().Debug("edit not saved", "file", path, "changed", res.Changed, "dry_run", o.dryRun)
		return res, nil
	}

	if err := f.Save(envfile.WithAtomic(o.atomic)); err != nil {
		return nil, fmt.Errorf("save %s: %w", path, err)
	}
	logging.L().Info("saved", "file", path, "op", op, "keys", len(keys))

	if o.journal {
		record(path, op, keys, o)
	}
	return res, nil
}

// Locked runs fn while holding the lock on path. It is for changes that
// replace the file as a whole, such as a restore.
func Locked(ctx context.Context, path string, fn func() error) error {
	unlock, err := storage.Lock(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			logging.L().Warn("release lock", "file", path, "err", err)
		}
	}()
	return fn()
}

// Record appends a journal entry for path. Failures are logged.
func Record(path string, op journal.Op, keys []string, opts ...Option) {
	o := options{journal: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.journal {
		record(path, op, keys, o)
	}
}

func record(path string, op journal.Op, keys []string, o options) {
	jopts := []journal.Option{journal.WithFile(path), journal.WithKeys(keys)}
	if o.source != "" {
		jopts = append(jopts, journal.WithSource(o.source))
	}
	if o.tool != "" {
		jopts = append(jopts, journal.WithTool(o.tool))
	}
	if err := journal.Log(filepath.Dir(path), op, jopts...); err != nil {
		logging.L().Warn("journal write failed", "file", path, "err", err)
	}
}

func open(path string, create bool) (*envfile.File, error) {
	f, err := envfile.Load(path)
	if err == nil {
		return f, nil
	}
	if create && errors.Is(err, envfile.ErrNotFound) {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return envfile.New(path), nil
		}
	}
	return nil, err
}

// Diff returns a unified diff between two renderings of path.
func Diff(path, before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}
