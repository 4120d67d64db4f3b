package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/editor"
	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/storage"
	"github.com/xmazu/envedit/internal/tui"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Set variables from a JSON, YAML, TOML or .env file",
	Long: `Set every key of FILE in the .env file. Nested JSON, YAML and TOML
objects are flattened with "_" and keys are upper-cased (database.host
becomes DATABASE_HOST). The format is taken from the extension unless
--format is given; other files are read as .env.
New keys are appended in sorted order. With --no-override existing keys
keep their value.

Examples:
  envedit import config.json
  envedit import secrets.yaml --no-override --dry-run
  envedit import other.env`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importFormat     string
	importNoOverride bool
	importDryRun     bool
	importNoAtomic   bool
)

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "", "Input format: json, yaml, toml or env (default: from extension)")
	importCmd.Flags().BoolVar(&importNoOverride, "no-override", false, "Keep existing values")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Print the diff instead of writing the file")
	importCmd.Flags().BoolVar(&importNoAtomic, "no-atomic", false, "Overwrite the file in place instead of replacing it atomically")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	src := args[0]
	values, err := readImport(src)
	if err != nil {
		return err
	}
	for k := range values {
		if !envfile.ValidKey(k) {
			return fmt.Errorf("%s: invalid key %q", src, k)
		}
	}

	path, err := targetFile()
	if err != nil {
		return err
	}
	opts, err := editOptions(importDryRun, importNoAtomic, editor.Create(true), editor.Source(src))
	if err != nil {
		return err
	}

	res, err := editor.Edit(cmdContext(cmd), path, journal.OpImport, func(f *envfile.File) ([]string, error) {
		apply := make(map[string]string, len(values))
		for k, v := range values {
			if importNoOverride && f.Has(k) {
				continue
			}
			apply[k] = v
		}
		if err := f.Import(apply); err != nil {
			return nil, err
		}
		return sortedKeys(apply), nil
	}, opts...)
	if err != nil {
		return err
	}

	if importDryRun {
		printDryRun(cmd, res)
		return nil
	}
	fmt.Fprintf(stderr(cmd), "%s imported %d key(s) from %s\n", tui.Success("✓"), len(res.Keys), src)
	return nil
}

func readImport(src string) (map[string]string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}

	name := importFormat
	if name == "" {
		if format, ok := storage.FormatFromPath(src); ok {
			name = string(format)
		} else {
			name = "env"
		}
	}
	if name == "env" || name == "dotenv" {
		lines, err := envfile.Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(src), err)
		}
		values := make(map[string]string)
		for _, line := range lines {
			if line.IsEntry() {
				values[line.Key] = line.Value
			}
		}
		return values, nil
	}

	format, err := storage.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	values, err := storage.DecodeMap(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return values, nil
}
