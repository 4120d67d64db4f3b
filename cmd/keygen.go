package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/storage"
	"github.com/xmazu/envedit/internal/tui"
	"github.com/xmazu/envedit/internal/vault"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an age key pair for encrypted backups",
	Long: `Generate a new age X25519 identity. The identity (private key) is
written to --out with mode 0600, or printed when no file is given; the
recipient (public key) is printed to stdout. Put the recipient in the
config as "recipient" to encrypt every backup by default.

Examples:
  envedit keygen --out ~/.config/envedit/age.key
  export ` + vault.IdentityEnv + `=$(envedit keygen | head -n 1)`,
	Args: cobra.NoArgs,
	RunE: runKeygen,
}

var keygenOut string

func init() {
	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "", "Write the identity to this file")
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	id, err := vault.GenerateIdentity()
	if err != nil {
		return err
	}
	out := stdout(cmd)

	if keygenOut == "" {
		fmt.Fprintln(out, id.String())
		fmt.Fprintln(out, id.Recipient().String())
		return nil
	}

	if _, err := os.Stat(keygenOut); err == nil {
		return fmt.Errorf("%s already exists", keygenOut)
	}
	content := fmt.Sprintf("# public key: %s\n%s\n", id.Recipient(), id)
	if err := storage.WriteFileAtomic(keygenOut, []byte(content), 0600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	fmt.Fprintf(stderr(cmd), "%s identity written to %s\n", tui.Success("✓"), keygenOut)
	fmt.Fprintln(out, id.Recipient().String())
	return nil
}
