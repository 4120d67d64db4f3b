// Package config loads envedit settings from the user config file and the
// project's .envedit.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xmazu/envedit/internal/schema"
	"github.com/xmazu/envedit/internal/storage"
	"github.com/xmazu/envedit/internal/workspace"
)

const (
	LogLevelEnv = "ENVEDIT_LOG_LEVEL"
	FileEnv     = "ENVEDIT_FILE"

	DefaultFile = ".env"
)

// Config holds every setting. Pointer fields distinguish "unset" from an
// explicit false so a project file can turn off what the user file enabled.
type Config struct {
	File      string       `yaml:"file,omitempty"`
	Atomic    *bool        `yaml:"atomic,omitempty"`
	BackupDir string       `yaml:"backup_dir,omitempty"`
	Recipient string       `yaml:"recipient,omitempty"`
	Journal   *bool        `yaml:"journal,omitempty"`
	LogLevel  string       `yaml:"log_level,omitempty"`
	Include   []string     `yaml:"include,omitempty"`
	Exclude   []string     `yaml:"exclude,omitempty"`
	Schema    *schema.Spec `yaml:"schema,omitempty"`

	// Root is the workspace root the project file was looked up in.
	Root string `yaml:"-"`
}

// Load reads the user config, then the project config at the workspace
// root above dir, then the environment overrides. Later sources win field
// by field. Missing files are not an error.
func Load(dir string) (*Config, error) {
	return LoadFrom(UserConfigPath(), dir)
}

// LoadFrom is Load with an explicit user config path.
func LoadFrom(userPath, dir string) (*Config, error) {
	cfg := &Config{}

	if userPath != "" {
		var user Config
		if err := storage.NewYAMLFile(userPath).LoadIfExists(&user); err != nil {
			return nil, fmt.Errorf("load user config: %w", err)
		}
		cfg.merge(&user)
	}

	root, err := workspace.FindRoot(dir)
	if err != nil {
		return nil, err
	}
	cfg.Root = root

	var project Config
	if err := storage.NewYAMLFile(ProjectPath(root)).LoadIfExists(&project); err != nil {
		return nil, fmt.Errorf("load project config: %w", err)
	}
	cfg.merge(&project)

	if v := os.Getenv(LogLevelEnv); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(FileEnv); v != "" {
		cfg.File = v
	}

	return cfg, nil
}

func ProjectPath(root string) string {
	return filepath.Join(root, workspace.ProjectFileName)
}

func (c *Config) merge(o *Config) {
	if o.File != "" {
		c.File = o.File
	}
	if o.Atomic != nil {
		c.Atomic = o.Atomic
	}
	if o.BackupDir != "" {
		c.BackupDir = o.BackupDir
	}
	if o.Recipient != "" {
		c.Recipient = o.Recipient
	}
	if o.Journal != nil {
		c.Journal = o.Journal
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if len(o.Include) > 0 {
		c.Include = o.Include
	}
	if len(o.Exclude) > 0 {
		c.Exclude = o.Exclude
	}
	if !o.Schema.Empty() {
		c.Schema = o.Schema
	}
}

// EnvFile returns the configured env file. A relative path is taken from
// the workspace root.
func (c *Config) EnvFile() string {
	name := c.File
	if name == "" {
		name = DefaultFile
	}
	if filepath.IsAbs(name) || c.Root == "" {
		return name
	}
	return filepath.Join(c.Root, name)
}

func (c *Config) AtomicEnabled() bool {
	return c.Atomic == nil || *c.Atomic
}

func (c *Config) JournalEnabled() bool {
	return c.Journal == nil || *c.Journal
}
