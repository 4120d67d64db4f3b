package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

var DefaultExcludeDirs = []string{
	".git",
	".envedit",
	"node_modules",
	"vendor",
	".cache",
	".turbo",
	".next",
}

// ListOptions narrows ListEnvFiles. Patterns are doublestar globs matched
// against slash-separated paths relative to the root.
type ListOptions struct {
	Include []string
	Exclude []string
}

// ListEnvFiles returns env files under root. Without Include patterns a
// file qualifies when IsEnvFilename accepts its name.
func ListEnvFiles(root string, opts ListOptions) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if _, err := doublestar.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}

	excludeSet := make(map[string]bool)
	for _, d := range DefaultExcludeDirs {
		excludeSet[d] = true
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (excludeSet[d.Name()] || matchAny(opts.Exclude, rel)) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchAny(opts.Exclude, rel) {
			return nil
		}
		if len(opts.Include) > 0 {
			if matchAny(opts.Include, rel) {
				files = append(files, path)
			}
			return nil
		}
		if IsEnvFilename(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
