package cmd

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRunImport(t *testing.T) {
	t.Run("json is flattened", func(t *testing.T) {
		path := setupCmd(t, "# app\nAPP_ENV=local\n")
		src := filepath.Join(dirOf(path), "config.json")
		writeFile(t, src, `{"app_env": "production", "database": {"host": "db", "port": 5432}}`)

		if err := runImport(nil, []string{src}); err != nil {
			t.Fatalf("runImport() error = %v", err)
		}
		want := "# app\nAPP_ENV=production\n\nDATABASE_HOST=db\nDATABASE_PORT=5432"
		if got := readFile(t, path); got != want {
			t.Errorf("file = %q, want %q", got, want)
		}
	})

	t.Run("yaml without override", func(t *testing.T) {
		path := setupCmd(t, "A=keep\n")
		src := filepath.Join(dirOf(path), "values.yaml")
		writeFile(t, src, "a: replaced\nb: new\n")
		importNoOverride = true

		if err := runImport(nil, []string{src}); err != nil {
			t.Fatalf("runImport() error = %v", err)
		}
		if got := readFile(t, path); got != "A=keep\n\nB=new" {
			t.Errorf("file = %q", got)
		}
	})

	t.Run("env file by default", func(t *testing.T) {
		path := setupCmd(t, "")
		src := filepath.Join(dirOf(path), "other.env")
		writeFile(t, src, "# other\nX=1\nY=\"two words\"\n")

		if err := runImport(nil, []string{src}); err != nil {
			t.Fatalf("runImport() error = %v", err)
		}
		if got := readFile(t, path); got != "X=1\nY=\"two words\"" {
			t.Errorf("file = %q", got)
		}
	})

	t.Run("explicit format", func(t *testing.T) {
		path := setupCmd(t, "")
		src := filepath.Join(dirOf(path), "values.txt")
		writeFile(t, src, "[server]\nport = 8080\n")
		importFormat = "toml"

		if err := runImport(nil, []string{src}); err != nil {
			t.Fatalf("runImport() error = %v", err)
		}
		if got := readFile(t, path); got != "SERVER_PORT=8080" {
			t.Errorf("file = %q", got)
		}
	})

	t.Run("dry run", func(t *testing.T) {
		path := setupCmd(t, "A=1\n")
		src := filepath.Join(dirOf(path), "v.json")
		writeFile(t, src, `{"B": "2"}`)
		importDryRun = true

		out, err := captureStdout(t, func() error { return runImport(nil, []string{src}) })
		if err != nil {
			t.Fatalf("runImport() error = %v", err)
		}
		if !strings.Contains(out, "+B=2") {
			t.Errorf("diff = %q, want +B=2", out)
		}
		if got := readFile(t, path); got != "A=1\n" {
			t.Errorf("file = %q, want unchanged", got)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		path := setupCmd(t, "A=1\n")
		src := filepath.Join(dirOf(path), "v.json")
		writeFile(t, src, `{}`)
		importFormat = "ini"

		if err := runImport(nil, []string{src}); err == nil {
			t.Error("runImport() with unknown format should fail")
		}
	})

	t.Run("missing source", func(t *testing.T) {
		setupCmd(t, "A=1\n")
		if err := runImport(nil, []string{"nope.json"}); err == nil {
			t.Error("runImport() with missing source should fail")
		}
	})
}

func TestRunMerge(t *testing.T) {
	t.Run("adds missing keys only", func(t *testing.T) {
		path := setupCmd(t, "# local\nA=mine\n")
		other := filepath.Join(dirOf(path), ".env.example")
		writeFile(t, other, "A=example\nB=2\nC=3\n")

		if err := runMerge(nil, []string{other}); err != nil {
			t.Fatalf("runMerge() error = %v", err)
		}
		if got := readFile(t, path); got != "# local\nA=mine\n\nB=2\nC=3" {
			t.Errorf("file = %q", got)
		}
	})

	t.Run("override", func(t *testing.T) {
		path := setupCmd(t, "A=mine\n")
		other := filepath.Join(dirOf(path), ".env.example")
		writeFile(t, other, "A=example\n")
		mergeOverride = true

		if err := runMerge(nil, []string{other}); err != nil {
			t.Fatalf("runMerge() error = %v", err)
		}
		if got := readFile(t, path); got != "A=example\n" {
			t.Errorf("file = %q", got)
		}
	})

	t.Run("broken other changes nothing", func(t *testing.T) {
		path := setupCmd(t, "A=1\n")
		other := filepath.Join(dirOf(path), "broken.env")
		writeFile(t, other, "B=\"unterminated\n")

		if err := runMerge(nil, []string{other}); err == nil {
			t.Error("runMerge() with broken file should fail")
		}
		if got := readFile(t, path); got != "A=1\n" {
			t.Errorf("file = %q, want unchanged", got)
		}
	})
}
