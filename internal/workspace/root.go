package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectFileName is the per-project settings file. It also marks the
// workspace root.
const ProjectFileName = ".envedit.yaml"

var MarkerFiles = []string{
	ProjectFileName,
	"pnpm-workspace.yaml",
	"turbo.json",
	"lerna.json",
	"go.work",
	"settings.gradle",
	"settings.gradle.kts",
	".git",
}

// FindRoot walks up from dir to the nearest directory holding a marker
// file. Without a marker the absolute form of dir is returned.
func FindRoot(dir string) (string, error) {
	original, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	dir = original

	for {
		if FindMarker(dir) != "" {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return original, nil
		}
		dir = parent
	}
}

func FindMarker(root string) string {
	for _, marker := range MarkerFiles {
		path := filepath.Join(root, marker)
		if _, err := os.Stat(path); err == nil {
			return marker
		}
	}
	return ""
}

func FormatMarkerForDisplay(marker string) string {
	switch marker {
	case "":
		return "unknown"
	case ".git":
		return "git repository"
	case ProjectFileName:
		return "envedit project"
	}
	return marker
}

const MaxEnvSearchDepth = 16

// FindEnvInParents looks for name in dir and up to maxDepth parents.
func FindEnvInParents(dir, name string, maxDepth int) (string, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}
	for i := 0; i < maxDepth; i++ {
		envPath := filepath.Join(dir, name)
		if info, err := os.Stat(envPath); err == nil && info.Mode().IsRegular() {
			return envPath, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no %s found in current or parent directories (searched up to %d levels)", name, maxDepth)
}
