package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/editor"
	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/tui"
	"github.com/xmazu/envedit/internal/vault"
)

var restoreCmd = &cobra.Command{
	Use:   "restore SRC",
	Short: "Replace the .env file with a backup",
	Long: `Replace the .env file with the contents of SRC. Encrypted backups are
detected and decrypted with the identity file given by --identity, or with
the identity in $` + vault.IdentityEnv + `. Without either, the path of the
identity file is asked for. The backup must parse as a .env file before
anything is written.

Examples:
  envedit restore .env.20260101T120000Z.bak
  envedit restore backup.age --identity ~/.config/envedit/age.key --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

var restoreIdentity string
var restoreYes bool

func init() {
	restoreCmd.Flags().StringVarP(&restoreIdentity, "identity", "i", "", "age identity file for encrypted backups")
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	src := args[0]
	path, err := targetFile()
	if err != nil {
		return err
	}

	if !restoreYes {
		ok, err := tui.Confirm(fmt.Sprintf("Replace %s with %s?", path, src))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(stderr(cmd), "Aborted.")
			return nil
		}
	}

	encrypted := vault.IsEncrypted(src)
	identity := restoreIdentity
	if encrypted && identity == "" && os.Getenv(vault.IdentityEnv) == "" && interactive() {
		identity, err = tui.PlaintextInput("age identity file")
		if err != nil {
			return err
		}
	}

	err = editor.Locked(cmdContext(cmd), path, func() error {
		f := envfile.New(path)
		if !encrypted {
			return f.Restore(src)
		}
		ids, err := vault.LoadIdentities(identity)
		if err != nil {
			return err
		}
		return vault.Restore(f, src, ids...)
	})
	if err != nil {
		return err
	}

	opts, err := editOptions(false, false, editor.Source(src))
	if err != nil {
		return err
	}
	editor.Record(path, journal.OpRestore, nil, opts...)

	fmt.Fprintf(stderr(cmd), "%s restored %s from %s\n", tui.Success("✓"), path, src)
	return nil
}
