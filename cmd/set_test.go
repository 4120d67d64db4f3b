package cmd

import (
	"os"
	"strings"
	"testing"

	"github.com/xmazu/envedit/internal/journal"
	"github.com/xmazu/envedit/internal/tui"
)

func TestRunSet(t *testing.T) {
	t.Run("updates in place", func(t *testing.T) {
		path := setupCmd(t, "# db\nDB_HOST=localhost\nDB_PORT=5432\n")

		if err := runSet(nil, []string{"DB_HOST", "db.internal"}); err != nil {
			t.Fatalf("runSet() error = %v", err)
		}
		if got, want := readFile(t, path), "# db\nDB_HOST=db.internal\nDB_PORT=5432\n"; got != want {
			t.Errorf("file = %q, want %q", got, want)
		}
	})

	t.Run("inserts after key with spacing", func(t *testing.T) {
		path := setupCmd(t, "A=1\nB=2\n")
		setAfter = "A"
		setSpacing = 1

		if err := runSet(nil, []string{"NEW", "hello world"}); err != nil {
			t.Fatalf("runSet() error = %v", err)
		}
		if got, want := readFile(t, path), "A=1\n\nNEW=\"hello world\"\nB=2\n"; got != want {
			t.Errorf("file = %q, want %q", got, want)
		}
	})

	t.Run("top", func(t *testing.T) {
		path := setupCmd(t, "A=1\n")
		setTop = true

		if err := runSet(nil, []string{"Z", "0"}); err != nil {
			t.Fatalf("runSet() error = %v", err)
		}
		if got := readFile(t, path); got != "Z=0\nA=1\n" {
			t.Errorf("file = %q", got)
		}
	})

	t.Run("creates missing file", func(t *testing.T) {
		path := setupCmd(t, "")

		if err := runSet(nil, []string{"APP_ENV", "local"}); err != nil {
			t.Fatalf("runSet() error = %v", err)
		}
		if got := readFile(t, path); got != "APP_ENV=local" {
			t.Errorf("file = %q, want APP_ENV=local", got)
		}
	})

	t.Run("value from prompt", func(t *testing.T) {
		path := setupCmd(t, "A=1\n")
		tui.MockPrompts("s3cret")

		if err := runSet(nil, []string{"TOKEN"}); err != nil {
			t.Fatalf("runSet() error = %v", err)
		}
		if got := readFile(t, path); got != "A=1\n\nTOKEN=s3cret" {
			t.Errorf("file = %q", got)
		}
	})

	t.Run("dry run leaves file alone", func(t *testing.T) {
		path := setupCmd(t, "A=1\n")
		setDryRun = true

		out, err := captureStdout(t, func() error {
			return runSet(nil, []string{"A", "2"})
		})
		if err != nil {
			t.Fatalf("runSet() error = %v", err)
		}
		if got := readFile(t, path); got != "A=1\n" {
			t.Errorf("file = %q, want unchanged", got)
		}
		if !strings.Contains(out, "-A=1") || !strings.Contains(out, "+A=2") {
			t.Errorf("diff = %q, want -A=1 and +A=2", out)
		}
	})

	t.Run("invalid key", func(t *testing.T) {
		setupCmd(t, "A=1\n")
		if err := runSet(nil, []string{"BAD KEY", "x"}); err == nil {
			t.Error("runSet() with invalid key should fail")
		}
	})

	t.Run("journals the edit", func(t *testing.T) {
		path := setupCmd(t, "A=1\n")
		if err := runSet(nil, []string{"B", "2"}); err != nil {
			t.Fatalf("runSet() error = %v", err)
		}

		entries, err := journal.Show(dirOf(path), 0)
		if err != nil {
			t.Fatalf("journal.Show() error = %v", err)
		}
		if len(entries) != 1 || entries[0].Op != string(journal.OpSet) || entries[0].Keys[0] != "B" {
			t.Errorf("entries = %+v, want one set of B", entries)
		}
	})

	t.Run("no-atomic keeps the inode", func(t *testing.T) {
		path := setupCmd(t, "A=1\n")
		setNoAtomic = true
		before, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}

		if err := runSet(nil, []string{"A", "2"}); err != nil {
			t.Fatalf("runSet() error = %v", err)
		}
		after, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if !os.SameFile(before, after) {
			t.Error("file was replaced, want written in place")
		}
	})
}

func TestRunUnset(t *testing.T) {
	t.Run("removes keys and keeps comments", func(t *testing.T) {
		path := setupCmd(t, "# keep\nA=1\nB=2\nA=3\n")

		if err := runUnset(nil, []string{"A", "MISSING"}); err != nil {
			t.Fatalf("runUnset() error = %v", err)
		}
		if got := readFile(t, path); got != "# keep\nB=2\n" {
			t.Errorf("file = %q", got)
		}
	})

	t.Run("dry run", func(t *testing.T) {
		path := setupCmd(t, "A=1\n")
		unsetDryRun = true

		if _, err := captureStdout(t, func() error { return runUnset(nil, []string{"A"}) }); err != nil {
			t.Fatalf("runUnset() error = %v", err)
		}
		if got := readFile(t, path); got != "A=1\n" {
			t.Errorf("file = %q, want unchanged", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		setupCmd(t, "")
		if err := runUnset(nil, []string{"A"}); err == nil {
			t.Error("runUnset() on missing file should fail")
		}
	})
}
