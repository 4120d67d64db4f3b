package envfile

import (
	"os"

	"github.com/xmazu/envedit/internal/storage"
)

const defaultPerm os.FileMode = 0644

type saveOptions struct {
	path   string
	atomic bool
	perm   os.FileMode
}

// SaveOption configures Save.
type SaveOption func(*saveOptions)

// SaveTo writes to path instead of the loaded path.
func SaveTo(path string) SaveOption {
	return func(o *saveOptions) {
		o.path = path
	}
}

// NonAtomic overwrites the target in place instead of renaming a temporary
// file over it.
func NonAtomic() SaveOption {
	return func(o *saveOptions) {
		o.atomic = false
	}
}

// WithAtomic toggles atomic writes; true is the default.
func WithAtomic(atomic bool) SaveOption {
	return func(o *saveOptions) {
		o.atomic = atomic
	}
}

// WithPerm sets the mode used when the target does not exist yet.
func WithPerm(perm os.FileMode) SaveOption {
	return func(o *saveOptions) {
		o.perm = perm
	}
}

// Save writes Preview() to the target. An existing target keeps its mode.
func (f *File) Save(opts ...SaveOption) error {
	o := saveOptions{path: f.path, atomic: true, perm: defaultPerm}
	for _, opt := range opts {
		opt(&o)
	}
	if o.path == "" {
		return ErrNoTarget
	}

	perm := storage.FileMode(o.path, o.perm)
	data := []byte(f.Preview())

	if !o.atomic {
		if err := os.WriteFile(o.path, data, perm); err != nil {
			return ioError("write", o.path, err)
		}
		return nil
	}

	if err := storage.WriteFileAtomic(o.path, data, perm); err != nil {
		return ioError("save", o.path, err)
	}
	return nil
}

// Backup copies the loaded file byte for byte to dst.
func (f *File) Backup(dst string) error {
	if f.path == "" {
		return ErrNoTarget
	}
	if _, err := readRegular(f.path); err != nil {
		return err
	}
	if err := storage.CopyFile(f.path, dst); err != nil {
		return ioError("backup", dst, err)
	}
	return nil
}

// Restore copies src over the loaded file and reloads the document from it.
func (f *File) Restore(src string) error {
	if f.path == "" {
		return ErrNoTarget
	}
	if _, err := readRegular(src); err != nil {
		return err
	}
	if err := storage.CopyFile(src, f.path); err != nil {
		return ioError("restore", f.path, err)
	}
	return f.Load(f.path)
}
