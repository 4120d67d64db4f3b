// Package loader puts the values of env files into a process environment.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xmazu/envedit/internal/envfile"
)

// Apply sets every value in the process environment and returns the keys
// it set, sorted. A variable that already exists is left alone unless
// override is true.
func Apply(values map[string]string, override bool) ([]string, error) {
	var applied []string
	for _, k := range sortedKeys(values) {
		if _, exists := os.LookupEnv(k); exists && !override {
			continue
		}
		if err := os.Setenv(k, values[k]); err != nil {
			return applied, fmt.Errorf("set %s: %w", k, err)
		}
		applied = append(applied, k)
	}
	return applied, nil
}

// Expand resolves $VAR and ${VAR} references inside values. A name is
// looked up with lookup first (os.LookupEnv when nil), then among values
// themselves; unknown names expand to "". References between values are
// followed, and a cycle leaves the inner reference empty.
func Expand(values map[string]string, lookup func(string) (string, bool)) map[string]string {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	out := make(map[string]string, len(values))
	var resolve func(key string, seen map[string]bool) string
	resolve = func(key string, seen map[string]bool) string {
		if v, ok := out[key]; ok {
			return v
		}
		seen[key] = true
		v := os.Expand(values[key], func(name string) string {
			if env, ok := lookup(name); ok {
				return env
			}
			if _, ok := values[name]; !ok || seen[name] {
				return ""
			}
			return resolve(name, seen)
		})
		delete(seen, key)
		return v
	}

	for _, k := range sortedKeys(values) {
		out[k] = resolve(k, map[string]bool{})
	}
	return out
}

// Environ returns base, a list of KEY=value pairs as from os.Environ,
// with values added. Existing variables keep their value unless override
// is true.
func Environ(base []string, values map[string]string, override bool) []string {
	index := make(map[string]int, len(base))
	env := make([]string, 0, len(base)+len(values))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if i, ok := index[k]; ok {
			env[i] = kv
			continue
		}
		index[k] = len(env)
		env = append(env, kv)
	}

	for _, k := range sortedKeys(values) {
		kv := k + "=" + values[k]
		if i, ok := index[k]; ok {
			if override {
				env[i] = kv
			}
			continue
		}
		index[k] = len(env)
		env = append(env, kv)
	}
	return env
}

// Load reads paths in order and merges their values. Later files only
// replace earlier values when override is true. Without strict, files that
// are missing or fail to parse are skipped.
func Load(paths []string, override, strict bool) (map[string]string, error) {
	merged := make(map[string]string)
	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", p, err)
		}

		f, err := envfile.Load(absPath)
		if err != nil {
			if strict {
				return nil, err
			}
			continue
		}
		for k, v := range f.ToMap() {
			if _, ok := merged[k]; !ok || override {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// MergeOverlay applies KEY=value pairs given on the command line.
func MergeOverlay(env map[string]string, overlay []string, override bool) error {
	for _, s := range overlay {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid --env %q: expected KEY=value", s)
		}
		if !envfile.ValidKey(key) {
			return fmt.Errorf("invalid --env %q: bad key", s)
		}
		if _, exists := env[key]; !exists || override {
			env[key] = value
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
