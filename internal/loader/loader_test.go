package loader

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestApply(t *testing.T) {
	t.Setenv("ENVEDIT_TEST_EXISTING", "from-shell")
	t.Setenv("ENVEDIT_TEST_NEW", "")
	os.Unsetenv("ENVEDIT_TEST_NEW")

	values := map[string]string{
		"ENVEDIT_TEST_EXISTING": "from-file",
		"ENVEDIT_TEST_NEW":      "new",
	}

	t.Run("keeps existing variables", func(t *testing.T) {
		applied, err := Apply(values, false)
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if !reflect.DeepEqual(applied, []string{"ENVEDIT_TEST_NEW"}) {
			t.Errorf("Apply() = %v, want [ENVEDIT_TEST_NEW]", applied)
		}
		if got := os.Getenv("ENVEDIT_TEST_EXISTING"); got != "from-shell" {
			t.Errorf("ENVEDIT_TEST_EXISTING = %q, want from-shell", got)
		}
		if got := os.Getenv("ENVEDIT_TEST_NEW"); got != "new" {
			t.Errorf("ENVEDIT_TEST_NEW = %q, want new", got)
		}
	})

	t.Run("override", func(t *testing.T) {
		applied, err := Apply(values, true)
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if len(applied) != 2 {
			t.Errorf("Apply() = %v, want both keys", applied)
		}
		if got := os.Getenv("ENVEDIT_TEST_EXISTING"); got != "from-file" {
			t.Errorf("ENVEDIT_TEST_EXISTING = %q, want from-file", got)
		}
	})
}

func TestExpand(t *testing.T) {
	env := map[string]string{"HOME": "/home/dev", "DB_HOST": "shell-host"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	values := map[string]string{
		"DB_HOST": "file-host",
		"DB_PORT": "5432",
		"DB_URL":  "postgres://${DB_HOST}:$DB_PORT/app",
		"CACHE":   "$HOME/.cache",
		"NESTED":  "${DB_URL}?sslmode=off",
		"UNKNOWN": "x${NOPE}y",
		"CYCLE_A": "a${CYCLE_B}",
		"CYCLE_B": "b${CYCLE_A}",
		"LITERAL": "no refs",
	}

	got := Expand(values, lookup)

	want := map[string]string{
		"DB_HOST": "file-host",
		"DB_PORT": "5432",
		"DB_URL":  "postgres://shell-host:5432/app",
		"CACHE":   "/home/dev/.cache",
		"NESTED":  "postgres://shell-host:5432/app?sslmode=off",
		"UNKNOWN": "xy",
		"CYCLE_A": "ab",
		"CYCLE_B": "bab",
		"LITERAL": "no refs",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestEnviron(t *testing.T) {
	base := []string{"PATH=/bin", "APP_ENV=shell", "PATH=/usr/bin"}
	values := map[string]string{"APP_ENV": "file", "PORT": "8080"}

	got := Environ(base, values, false)
	want := []string{"PATH=/usr/bin", "APP_ENV=shell", "PORT=8080"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Environ() = %v, want %v", got, want)
	}

	got = Environ(base, values, true)
	want = []string{"PATH=/usr/bin", "APP_ENV=file", "PORT=8080"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Environ(override) = %v, want %v", got, want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, ".env")
	second := filepath.Join(dir, ".env.local")
	if err := os.WriteFile(first, []byte("A=1\nB=1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("B=2\nC=2\n"), 0600); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, ".env.missing")

	got, err := Load([]string{first, second, missing}, false, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := map[string]string{"A": "1", "B": "1", "C": "2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %v, want %v", got, want)
	}

	got, err = Load([]string{first, second}, true, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got["B"] != "2" {
		t.Errorf("B = %q, want 2 with override", got["B"])
	}

	if _, err := Load([]string{first, missing}, false, true); err == nil {
		t.Error("Load(strict) expected error for missing file")
	}
}

func TestMergeOverlay(t *testing.T) {
	env := map[string]string{"A": "1"}

	if err := MergeOverlay(env, []string{"A=2", "B=x=y"}, false); err != nil {
		t.Fatalf("MergeOverlay() error = %v", err)
	}
	if env["A"] != "1" || env["B"] != "x=y" {
		t.Errorf("env = %v", env)
	}

	if err := MergeOverlay(env, []string{"A=2"}, true); err != nil {
		t.Fatalf("MergeOverlay() error = %v", err)
	}
	if env["A"] != "2" {
		t.Errorf("A = %q, want 2", env["A"])
	}

	for _, bad := range []string{"NOEQUALS", "=value", "A B=x", "B$D=x"} {
		if err := MergeOverlay(env, []string{bad}, false); err == nil {
			t.Errorf("MergeOverlay(%q) expected error", bad)
		}
	}
}
