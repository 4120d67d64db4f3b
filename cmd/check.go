package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/editor"
	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/schema"
	"github.com/xmazu/envedit/internal/storage"
	"github.com/xmazu/envedit/internal/tui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the .env file against the project schema",
	Long: `Check the .env file against the schema declared in .envedit.yaml (or the
file given by --schema): required keys must exist, typed keys must convert
and rules (min, max, in, pattern, min_len, max_len) must pass. Optional keys
with defaults count as present. With --fill the missing defaults are written
to the file. Entries that are commented out are reported as hints.

Example .envedit.yaml:

  schema:
    required: [APP_KEY]
    optional: {APP_ENV: production}
    types: {PORT: int}
    rules: {PORT: {min: 1, max: 65535}}`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var (
	checkSchema   string
	checkFill     bool
	checkDryRun   bool
	checkNoAtomic bool
)

func init() {
	checkCmd.Flags().StringVar(&checkSchema, "schema", "", "YAML file holding the schema (default: schema in .envedit.yaml)")
	checkCmd.Flags().BoolVar(&checkFill, "fill", false, "Write defaults of missing optional keys to the file")
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "With --fill, print the diff instead of writing")
	checkCmd.Flags().BoolVar(&checkNoAtomic, "no-atomic", false, "Overwrite the file in place instead of replacing it atomically")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	spec, err := checkSpec()
	if err != nil {
		return err
	}
	path, err := targetFile()
	if err != nil {
		return err
	}

	if checkFill {
		opts, err := editOptions(checkDryRun, checkNoAtomic)
		if err != nil {
			return err
		}
		res, err := editor.Edit(cmdContext(cmd), path, journal.OpFill, func(f *envfile.File) ([]string, error) {
			return spec.Fill(f)
		}, opts...)
		if err != nil {
			return err
		}
		if checkDryRun {
			printDryRun(cmd, res)
		} else {
			for _, k := range res.Keys {
				fmt.Fprintf(stderr(cmd), "%s %s filled with default\n", tui.Success("+"), tui.Label(k))
			}
		}
	}

	f, err := envfile.Load(path)
	if err != nil {
		return err
	}

	for _, line := range f.CommentedAssignments() {
		if !f.Has(line.Key) {
			fmt.Fprintf(stderr(cmd), "%s line %d: %s is commented out\n", tui.Muted("hint"), line.Num, line.Key)
		}
	}

	_, err = spec.Validate(valueStore(f.ToMap()))
	if err == nil {
		fmt.Fprintf(stdout(cmd), "%s %s matches the schema (%d keys declared)\n", tui.Success("✓"), path, len(spec.Keys()))
		return nil
	}

	problems := joinedErrors(err)
	for _, e := range problems {
		var verr *schema.ValidationError
		if errors.As(e, &verr) {
			fmt.Fprintf(stdout(cmd), "%s %s: %s\n", tui.Error("✗"), tui.Label(verr.Key), verr.Reason)
			continue
		}
		fmt.Fprintf(stdout(cmd), "%s %v\n", tui.Error("✗"), e)
	}
	return fmt.Errorf("%s: %d problem(s) found", path, len(problems))
}

func checkSpec() (*schema.Spec, error) {
	if checkSchema != "" {
		var doc struct {
			Schema *schema.Spec `yaml:"schema"`
		}
		if err := storage.NewYAMLFile(checkSchema).Load(&doc); err != nil {
			return nil, err
		}
		if doc.Schema.Empty() {
			return nil, fmt.Errorf("%s: no schema section", checkSchema)
		}
		return doc.Schema, nil
	}

	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if cfg.Schema.Empty() {
		return nil, errors.New("no schema configured: add a schema section to .envedit.yaml or pass --schema")
	}
	return cfg.Schema, nil
}

func joinedErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// valueStore lets the schema validate a copy of the values without
// touching the document.
type valueStore map[string]string

func (v valueStore) ToMap() map[string]string {
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func (v valueStore) Set(key, value string) error {
	v[key] = value
	return nil
}
