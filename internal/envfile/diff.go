package envfile

import "sort"

// Change is a key present on both sides with different values.
type Change struct {
	Current string `json:"current"`
	Other   string `json:"other"`
}

// DiffResult compares a current document against another one.
type DiffResult struct {
	MissingInCurrent map[string]string `json:"missing_in_current"`
	ExtraInCurrent   map[string]string `json:"extra_in_current"`
	Changed          map[string]Change `json:"changed"`
}

// Empty reports whether both sides hold the same keys and values.
func (d *DiffResult) Empty() bool {
	return len(d.MissingInCurrent) == 0 && len(d.ExtraInCurrent) == 0 && len(d.Changed) == 0
}

// Keys returns every key mentioned in the result, sorted.
func (d *DiffResult) Keys() []string {
	keys := make([]string, 0, len(d.MissingInCurrent)+len(d.ExtraInCurrent)+len(d.Changed))
	for k := range d.MissingInCurrent {
		keys = append(keys, k)
	}
	for k := range d.ExtraInCurrent {
		keys = append(keys, k)
	}
	for k := range d.Changed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func DiffMaps(current, other map[string]string) *DiffResult {
	d := &DiffResult{
		MissingInCurrent: map[string]string{},
		ExtraInCurrent:   map[string]string{},
		Changed:          map[string]Change{},
	}
	for k, v := range other {
		cur, ok := current[k]
		switch {
		case !ok:
			d.MissingInCurrent[k] = v
		case cur != v:
			d.Changed[k] = Change{Current: cur, Other: v}
		}
	}
	for k, v := range current {
		if _, ok := other[k]; !ok {
			d.ExtraInCurrent[k] = v
		}
	}
	return d
}

// Diff parses otherPath on its own and compares it with the document.
func (f *File) Diff(otherPath string) (*DiffResult, error) {
	other, err := Load(otherPath)
	if err != nil {
		return nil, err
	}
	return f.DiffFile(other), nil
}

func (f *File) DiffFile(other *File) *DiffResult {
	return DiffMaps(f.ToMap(), other.ToMap())
}
