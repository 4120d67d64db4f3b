package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/editor"
	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/tui"
	"github.com/xmazu/envedit/internal/vault"
)

var backupCmd = &cobra.Command{
	Use:   "backup [DEST]",
	Short: "Copy the .env file to a backup",
	Long: `Write a backup of the .env file. Without DEST the backup goes to the
configured backup_dir (or next to the file) as <name>.<timestamp>.bak.
With --encrypt-to, or a recipient in the config, the backup is encrypted
with age for those public keys and gets an .age suffix.

Examples:
  envedit backup
  envedit backup /tmp/env.bak
  envedit backup --encrypt-to age1... --armor`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

var (
	backupRecipients string
	backupArmor      bool
	backupPlain      bool
)

func init() {
	backupCmd.Flags().StringVar(&backupRecipients, "encrypt-to", "", "Encrypt for these age recipients (comma separated)")
	backupCmd.Flags().BoolVar(&backupArmor, "armor", false, "Write ASCII-armored age output")
	backupCmd.Flags().BoolVar(&backupPlain, "plain", false, "Do not encrypt even if a recipient is configured")
	backupCmd.MarkFlagsMutuallyExclusive("encrypt-to", "plain")
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	path, err := targetFile()
	if err != nil {
		return err
	}
	f, err := envfile.Load(path)
	if err != nil {
		return err
	}

	recipients := backupRecipients
	if recipients == "" && !backupPlain {
		recipients = cfg.Recipient
	}
	encrypted := recipients != ""

	var dst string
	if len(args) == 1 {
		dst = args[0]
	} else {
		dst = backupPath(path, cfg.BackupDir, encrypted, time.Now())
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("create backup dir: %w", err)
		}
	}

	if encrypted {
		rs, err := vault.ParseRecipients(recipients)
		if err != nil {
			return err
		}
		if err := vault.Backup(f, dst, backupArmor, rs...); err != nil {
			return err
		}
	} else if err := f.Backup(dst); err != nil {
		return err
	}

	opts, err := editOptions(false, false, editor.Source(dst))
	if err != nil {
		return err
	}
	editor.Record(path, journal.OpBackup, nil, opts...)

	fmt.Fprintf(stderr(cmd), "%s backed up %s to %s\n", tui.Success("✓"), path, dst)
	fmt.Fprintln(stdout(cmd), dst)
	return nil
}

func backupPath(path, dir string, encrypted bool, now time.Time) string {
	if dir == "" {
		dir = filepath.Dir(path)
	}
	name := fmt.Sprintf("%s.%s.bak", filepath.Base(path), now.UTC().Format("20060102T150405Z"))
	if encrypted {
		name += ".age"
	}
	return filepath.Join(dir, name)
}
