package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/tui"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "View and verify the edit journal",
	Long: `View the journal of edits and verify its chain.

Every edit of an env file is appended to .envedit/journal.jsonl next to the
file: operation, keys (never values), source and time. Each entry holds the
hash of the previous one, forming a tamper-evident chain.`,
}

var journalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show journal entries",
	Long: `Display recent journal entries as JSON.

Shows operation, timestamp, file, keys and run ID.`,
	Args: cobra.NoArgs,
	RunE: runJournalShow,
}

var journalVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify journal chain integrity",
	Long: `Verify that the journal chain is intact.

Checks that each entry's prev_hash matches the hash of the previous entry
and fails when a break is found.`,
	Args: cobra.NoArgs,
	RunE: runJournalVerify,
}

var journalLastN int

func init() {
	journalShowCmd.Flags().IntVarP(&journalLastN, "last", "n", 10, "Number of entries to show (0 for all)")

	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalVerifyCmd)

	rootCmd.AddCommand(journalCmd)
}

func journalDir() (string, error) {
	path, err := targetFile()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	dir, err := journalDir()
	if err != nil {
		return err
	}
	entries, err := journal.Show(dir, journalLastN)
	if err != nil {
		if errors.Is(err, journal.ErrNoJournal) {
			fmt.Fprintln(stderr(cmd), "No journal found. Edits are recorded once you change a file.")
			return nil
		}
		return fmt.Errorf("read journal: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(stderr(cmd), "No entries in journal.")
		return nil
	}

	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout(cmd), string(b))
	return nil
}

func runJournalVerify(cmd *cobra.Command, args []string) error {
	dir, err := journalDir()
	if err != nil {
		return err
	}
	result, err := journal.Verify(dir)
	if err != nil {
		if errors.Is(err, journal.ErrNoJournal) {
			fmt.Fprintln(stderr(cmd), "No journal found.")
			return nil
		}
		return fmt.Errorf("verify journal: %w", err)
	}

	out := stdout(cmd)
	fmt.Fprintf(out, "Journal verified: %d entries\n", result.TotalEntries)
	if result.OK() {
		fmt.Fprintf(out, "Chain integrity: %s\n", tui.Success("OK"))
		return nil
	}

	fmt.Fprintf(out, "Chain breaks detected at lines: %v\n", result.Breaks)
	return fmt.Errorf("journal chain broken at %d line(s); it may have been tampered with", len(result.Breaks))
}
