package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/config"
	"github.com/xmazu/envedit/internal/editor"
	"github.com/xmazu/envedit/internal/logging"
	"github.com/xmazu/envedit/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:           "envedit",
	Short:         "Edit .env files without losing comments or formatting",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `envedit reads, edits and writes .env files while keeping every comment,
blank line and untouched entry exactly as it was. Updated keys stay where they
are; new keys go where you say (top, bottom, after or before another key).
Saves are atomic and every edit is recorded in a hash-chained journal.

EXAMPLES:

  envedit set DB_HOST db.internal
  envedit set REDIS_URL --after DB_HOST --spacing 1
  envedit unset LEGACY_TOKEN
  envedit diff .env.example
  envedit merge .env.example
  envedit check --fill
  envedit run -- go run ./cmd/server

CONFIGURATION:

  User settings live in ` + "`$ENVEDIT_CONFIG_DIR/config.yaml`" + ` (default: the XDG config
  directory), project settings in ` + "`.envedit.yaml`" + ` at the workspace root. The
  project file can also declare a schema for ` + "`envedit check`" + `.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		return logging.Setup(os.Stderr, level)
	},
}

var (
	flagFile     string
	flagLogLevel string
	flagConfig   string

	settings *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "Path to .env file (default: file from config, else .env at the workspace root)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to user config file")

	// Cobra adds --version when Version is set; use a clear template
	rootCmd.SetVersionTemplate("envedit version {{.Version}}\n")
}

// SetVersion sets the version string shown by --version (e.g. from ldflags).
func SetVersion(v string) { rootCmd.Version = v }

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exitError carries the exit code of a child process started by run.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// loadSettings reads the configuration once per process.
func loadSettings() (*config.Config, error) {
	if settings != nil {
		return settings, nil
	}
	userPath := flagConfig
	if userPath == "" {
		userPath = config.UserConfigPath()
	}
	cfg, err := config.LoadFrom(userPath, ".")
	if err != nil {
		return nil, err
	}
	settings = cfg
	return cfg, nil
}

// targetFile is the env file the command works on: --file, then config.
func targetFile() (string, error) {
	if flagFile != "" {
		return flagFile, nil
	}
	cfg, err := loadSettings()
	if err != nil {
		return "", err
	}
	return cfg.EnvFile(), nil
}

func editOptions(dryRun, noAtomic bool, extra ...editor.Option) ([]editor.Option, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return append([]editor.Option{
		editor.Atomic(cfg.AtomicEnabled() && !noAtomic),
		editor.Journal(cfg.JournalEnabled()),
		editor.DryRun(dryRun),
	}, extra...), nil
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd != nil {
		return cmd.OutOrStdout()
	}
	return os.Stdout
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd != nil {
		return cmd.ErrOrStderr()
	}
	return os.Stderr
}

// interactive reports whether prompts can be answered: stdin is a terminal
// or answers are mocked.
func interactive() bool {
	if tui.Mocked() {
		return true
	}
	fi, err := os.Stdin.Stat()
	return err != nil || fi.Mode()&os.ModeCharDevice != 0
}

// printDryRun shows what an edit would have written.
func printDryRun(cmd *cobra.Command, res *editor.Result) {
	if !res.Changed {
		fmt.Fprintln(stderr(cmd), "No changes.")
		return
	}
	fmt.Fprint(stdout(cmd), res.Diff)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
