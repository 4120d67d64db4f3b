package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	ConfigDirEnv   = "ENVEDIT_CONFIG_DIR"
	ConfigSubdir   = "envedit"
	ConfigFileName = "config.yaml"
)

// ConfigDir returns the user configuration directory: $ENVEDIT_CONFIG_DIR
// when set, otherwise envedit under the XDG config home.
func ConfigDir() string {
	if d := os.Getenv(ConfigDirEnv); d != "" {
		return d
	}
	return filepath.Join(xdg.ConfigHome, ConfigSubdir)
}

func UserConfigPath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}
