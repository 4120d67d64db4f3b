package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLFile reads a single YAML document such as config.yaml, .envedit.yaml
// or a schema file.
type YAMLFile struct {
	path string
}

func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: path}
}

// Load decodes the document into dest. A missing file is an error.
func (y *YAMLFile) Load(dest any) error {
	found, err := y.decode(dest)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("file not found: %s", y.path)
	}
	return nil
}

// LoadIfExists is Load without the error for a missing file; dest is left
// as it was in that case.
func (y *YAMLFile) LoadIfExists(dest any) error {
	_, err := y.decode(dest)
	return err
}

func (y *YAMLFile) decode(dest any) (bool, error) {
	data, err := os.ReadFile(y.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", y.path, err)
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		return true, fmt.Errorf("parse yaml %s: %w", y.path, err)
	}
	return true, nil
}
