package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/editor"
	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/tui"
)

var unsetCmd = &cobra.Command{
	Use:     "unset KEY...",
	Aliases: []string{"rm"},
	Short:   "Remove environment variables",
	Long: `Remove every occurrence of each KEY from the .env file. Comments and
blank lines around the removed entries are left alone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUnset,
}

var unsetDryRun bool
var unsetNoAtomic bool

func init() {
	unsetCmd.Flags().BoolVar(&unsetDryRun, "dry-run", false, "Print the diff instead of writing the file")
	unsetCmd.Flags().BoolVar(&unsetNoAtomic, "no-atomic", false, "Overwrite the file in place instead of replacing it atomically")
	rootCmd.AddCommand(unsetCmd)
}

func runUnset(cmd *cobra.Command, args []string) error {
	path, err := targetFile()
	if err != nil {
		return err
	}
	opts, err := editOptions(unsetDryRun, unsetNoAtomic)
	if err != nil {
		return err
	}

	var missing []string
	res, err := editor.Edit(cmdContext(cmd), path, journal.OpRemove, func(f *envfile.File) ([]string, error) {
		var removed []string
		for _, key := range args {
			if f.Remove(key) {
				removed = append(removed, key)
			} else {
				missing = append(missing, key)
			}
		}
		return removed, nil
	}, opts...)
	if err != nil {
		return err
	}

	for _, key := range missing {
		fmt.Fprintf(stderr(cmd), "%s %s not found\n", tui.Warning("!"), tui.Label(key))
	}
	if unsetDryRun {
		printDryRun(cmd, res)
		return nil
	}
	for _, key := range res.Keys {
		fmt.Fprintf(stderr(cmd), "%s %s removed\n", tui.Success("✓"), tui.Label(key))
	}
	return nil
}
