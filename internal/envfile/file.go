package envfile

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// File is an editable .env document. Lines keep their source text until
// they are changed, so an untouched document renders byte for byte as it
// was read.
//
// A File is not safe for concurrent use.
type File struct {
	path  string
	lines []*Line
}

// New returns an empty document that will be saved to path.
func New(path string) *File {
	return &File{
		path:  path,
		lines: []*Line{},
	}
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	f := New("")
	if err := f.Load(path); err != nil {
		return nil, err
	}
	return f, nil
}

// Load replaces the document with the parsed contents of path. On error the
// document is left as it was.
func (f *File) Load(path string) error {
	lines, err := parseFile(path)
	if err != nil {
		return err
	}
	f.path = path
	f.lines = lines
	return nil
}

func parseFile(path string) ([]*Line, error) {
	data, err := readRegular(path)
	if err != nil {
		return nil, err
	}
	lines, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}

func readRegular(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(path)
		}
		return nil, ioError("stat", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, notFound(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("read", path, err)
	}
	return data, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Len() int {
	return len(f.lines)
}

// Lines returns copies of every line record in document order.
func (f *File) Lines() []Line {
	out := make([]Line, len(f.lines))
	for i, line := range f.lines {
		out[i] = *line
	}
	return out
}

// Entries returns copies of the entry lines in document order.
func (f *File) Entries() []Line {
	out := make([]Line, 0, len(f.lines))
	for _, line := range f.lines {
		if line.IsEntry() {
			out = append(out, *line)
		}
	}
	return out
}

// Get returns the value of key. When a key appears more than once the last
// occurrence wins, matching ToMap.
func (f *File) Get(key string) (string, bool) {
	for i := len(f.lines) - 1; i >= 0; i-- {
		if line := f.lines[i]; line.IsEntry() && line.Key == key {
			return line.Value, true
		}
	}
	return "", false
}

func (f *File) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// Keys returns every distinct key in document order.
func (f *File) Keys() []string {
	seen := make(map[string]bool)
	keys := make([]string, 0, len(f.lines))
	for _, line := range f.lines {
		if !line.IsEntry() || seen[line.Key] {
			continue
		}
		seen[line.Key] = true
		keys = append(keys, line.Key)
	}
	return keys
}

func (f *File) ToMap() map[string]string {
	out := make(map[string]string)
	for _, line := range f.lines {
		if line.IsEntry() {
			out[line.Key] = line.Value
		}
	}
	return out
}

// MissingKeys returns the keys that have no entry, in the order given.
func (f *File) MissingKeys(keys []string) []string {
	present := f.ToMap()
	var missing []string
	for _, k := range keys {
		if _, ok := present[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// Set updates key in place or appends it at the bottom.
func (f *File) Set(key, value string) error {
	return f.SetAt(key, value, Bottom(), 0)
}

// SetAt updates every entry for key in place, keeping inline comments. If
// the key is new it is inserted at pos, preceded by spacing blank lines.
// pos and spacing are ignored for updates.
func (f *File) SetAt(key, value string, pos Position, spacing int) error {
	if !ValidKey(key) {
		return &ParseError{Key: key, Reason: "invalid key"}
	}

	formatted := FormatValue(value)

	updated := false
	for _, line := range f.lines {
		if !line.IsEntry() || line.Key != key {
			continue
		}
		line.Value = value
		line.Raw = key + "=" + formatted + line.InlineComment
		updated = true
	}
	if updated {
		return nil
	}

	at := f.resolve(pos)
	insert := make([]*Line, 0, max(spacing, 0)+1)
	for i := 0; i < spacing; i++ {
		insert = append(insert, blankLine())
	}
	insert = append(insert, &Line{
		Type:  LineTypeEntry,
		Raw:   key + "=" + formatted,
		Key:   key,
		Value: value,
	})

	lines := make([]*Line, 0, len(f.lines)+len(insert))
	lines = append(lines, f.lines[:at]...)
	lines = append(lines, insert...)
	lines = append(lines, f.lines[at:]...)
	f.lines = lines
	return nil
}

// Remove deletes every entry for key. Comments and blank lines around it
// are kept. It reports whether anything was removed.
func (f *File) Remove(key string) bool {
	kept := f.lines[:0]
	removed := false
	for _, line := range f.lines {
		if line.IsEntry() && line.Key == key {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	for i := len(kept); i < len(f.lines); i++ {
		f.lines[i] = nil
	}
	f.lines = kept
	return removed
}

// Import sets every pair with the default position. Keys are applied in
// sorted order so new keys are appended deterministically.
func (f *File) Import(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := f.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Preview renders the document as Save would write it.
func (f *File) Preview() string {
	var b strings.Builder
	for i, line := range f.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.Raw)
	}
	return b.String()
}

// Merge applies the entries of otherPath in their order. Existing keys are
// only overwritten when override is set. The other file is read and parsed
// before anything is applied; a failure after that leaves the keys applied
// so far in place. It returns the applied keys.
func (f *File) Merge(otherPath string, override bool) ([]string, error) {
	other, err := parseFile(otherPath)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, line := range other {
		if !line.IsEntry() {
			continue
		}
		if !override && f.Has(line.Key) {
			continue
		}
		if err := f.Set(line.Key, line.Value); err != nil {
			return applied, err
		}
		applied = append(applied, line.Key)
	}
	return applied, nil
}
