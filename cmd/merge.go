package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/editor"
	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/tui"
)

var mergeCmd = &cobra.Command{
	Use:   "merge OTHER",
	Short: "Add the keys of another .env file",
	Long: `Apply the entries of OTHER to the .env file in OTHER's order. Keys that
already exist keep their value unless --override is set; new keys are
appended. OTHER is parsed completely before anything changes.

Examples:
  envedit merge .env.example
  envedit merge .env.shared --override --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

var (
	mergeOverride bool
	mergeDryRun   bool
	mergeNoAtomic bool
)

func init() {
	mergeCmd.Flags().BoolVar(&mergeOverride, "override", false, "Overwrite existing keys with OTHER's values")
	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "Print the diff instead of writing the file")
	mergeCmd.Flags().BoolVar(&mergeNoAtomic, "no-atomic", false, "Overwrite the file in place instead of replacing it atomically")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	other := args[0]
	path, err := targetFile()
	if err != nil {
		return err
	}
	opts, err := editOptions(mergeDryRun, mergeNoAtomic, editor.Create(true), editor.Source(other))
	if err != nil {
		return err
	}

	res, err := editor.Edit(cmdContext(cmd), path, journal.OpMerge, func(f *envfile.File) ([]string, error) {
		return f.Merge(other, mergeOverride)
	}, opts...)
	if err != nil {
		return err
	}

	if mergeDryRun {
		printDryRun(cmd, res)
		return nil
	}
	if !res.Changed {
		fmt.Fprintln(stderr(cmd), "Nothing to merge.")
		return nil
	}
	fmt.Fprintf(stderr(cmd), "%s merged %d key(s) from %s\n", tui.Success("✓"), len(res.Keys), other)
	return nil
}
