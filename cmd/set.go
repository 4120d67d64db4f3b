package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/editor"
	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/tui"
)

var setCmd = &cobra.Command{
	Use:   "set KEY [VALUE]",
	Short: "Set an environment variable",
	Long: `Create or update a variable in the .env file.
An existing key is updated where it is; comments and formatting of the rest
of the file are kept. A new key goes to the bottom unless --top, --after or
--before says otherwise, with --spacing blank lines before it.
Without VALUE the value is read from a hidden prompt.
The file is created if it does not exist.

Examples:
  envedit set APP_ENV production
  envedit set DB_PASSWORD                     # prompt
  envedit set REDIS_HOST localhost --after DB_HOST
  envedit set APP_NAME "My App" --top --spacing 1 --dry-run`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSet,
}

var (
	setAfter    string
	setBefore   string
	setTop      bool
	setBottom   bool
	setSpacing  int
	setDryRun   bool
	setNoAtomic bool
)

func init() {
	setCmd.Flags().StringVar(&setAfter, "after", "", "Insert a new key after KEY")
	setCmd.Flags().StringVar(&setBefore, "before", "", "Insert a new key before KEY")
	setCmd.Flags().BoolVar(&setTop, "top", false, "Insert a new key at the top of the file")
	setCmd.Flags().BoolVar(&setBottom, "bottom", false, "Insert a new key at the bottom of the file (default)")
	setCmd.Flags().IntVar(&setSpacing, "spacing", 0, "Blank lines before a new key")
	setCmd.Flags().BoolVar(&setDryRun, "dry-run", false, "Print the diff instead of writing the file")
	setCmd.Flags().BoolVar(&setNoAtomic, "no-atomic", false, "Overwrite the file in place instead of replacing it atomically")
	setCmd.MarkFlagsMutuallyExclusive("after", "before", "top", "bottom")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !envfile.ValidKey(key) {
		return fmt.Errorf("invalid key %q: use letters, digits and _ . : -", key)
	}

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		v, err := readSetValue(key)
		if err != nil {
			return err
		}
		value = v
	}

	path, err := targetFile()
	if err != nil {
		return err
	}
	opts, err := editOptions(setDryRun, setNoAtomic, editor.Create(true))
	if err != nil {
		return err
	}

	pos := setPosition()
	res, err := editor.Edit(cmdContext(cmd), path, journal.OpSet, func(f *envfile.File) ([]string, error) {
		return []string{key}, f.SetAt(key, value, pos, setSpacing)
	}, opts...)
	if err != nil {
		return err
	}

	if setDryRun {
		printDryRun(cmd, res)
		return nil
	}
	if !res.Changed {
		fmt.Fprintf(stderr(cmd), "%s %s unchanged\n", tui.Muted("="), tui.Label(key))
		return nil
	}
	fmt.Fprintf(stderr(cmd), "%s %s set\n", tui.Success("✓"), tui.Label(key))
	return nil
}

func setPosition() envfile.Position {
	switch {
	case setAfter != "":
		return envfile.After(setAfter)
	case setBefore != "":
		return envfile.Before(setBefore)
	case setTop:
		return envfile.Top()
	}
	return envfile.Bottom()
}

func readSetValue(key string) (string, error) {
	if !interactive() {
		return "", fmt.Errorf("no value for %s: pass it as an argument when stdin is not a terminal", key)
	}
	return tui.HiddenInput(fmt.Sprintf("Value for %s", key))
}
