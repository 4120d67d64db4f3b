// Package mask hides values that look like secrets when they are printed.
package mask

import "strings"

// Rule reports values that are safe to show in full.
type Rule interface {
	Plain(key, value string) bool
}

type Detector struct {
	rules []Rule
}

func NewDetector() *Detector {
	return &Detector{
		rules: defaultRules(),
	}
}

// Plain reports whether any rule accepts the value as non-secret. Values
// in a known credential format are never plain.
func (d *Detector) Plain(key, value string) bool {
	if Kind(value) != "" {
		return false
	}
	for _, rule := range d.rules {
		if rule.Plain(key, value) {
			return true
		}
	}
	return false
}

// Value returns value as is when it is plain, otherwise its masked form.
func (d *Detector) Value(key, value string) string {
	if value == "" || d.Plain(key, value) {
		return value
	}
	return Mask(value)
}

// Map applies Value to every pair and returns a new map.
func (d *Detector) Map(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = d.Value(k, v)
	}
	return out
}

// Mask replaces all but the last few characters with '*'. Short values are
// masked completely.
func Mask(value string) string {
	length := len(value)
	if length == 0 {
		return ""
	}
	switch {
	case length <= 4:
		return strings.Repeat("*", length)
	case length <= 8:
		return strings.Repeat("*", length-2) + value[length-2:]
	default:
		return strings.Repeat("*", length-4) + value[length-4:]
	}
}
