package schema

import (
	"strings"
	"testing"
	"time"
)

type appConfig struct {
	AppEnv  string
	Port    int
	Debug   bool
	Hosts   []string
	Timeout time.Duration
	Secret  string `env:"APP_KEY"`
}

func TestDecode(t *testing.T) {
	spec := &Spec{
		Required: []string{"APP_ENV", "PORT", "APP_KEY"},
		Optional: map[string]string{
			"DEBUG":   "false",
			"HOSTS":   "a.example.com, b.example.com",
			"TIMEOUT": "5s",
		},
		Types: map[string]Type{
			"PORT":    TypeInt,
			"DEBUG":   TypeBool,
			"HOSTS":   TypeArray,
			"TIMEOUT": TypeDuration,
		},
	}

	values, err := spec.Validate(mapStore{"APP_ENV": "production", "PORT": "8080", "APP_KEY": "k"})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	var cfg appConfig
	if err := Decode(values, &cfg); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if cfg.AppEnv != "production" || cfg.Port != 8080 || cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Hosts) != 2 || cfg.Hosts[1] != "b.example.com" {
		t.Errorf("Hosts = %v", cfg.Hosts)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Secret != "k" {
		t.Errorf("Secret = %q, want k", cfg.Secret)
	}
}

func TestDecodeFromStrings(t *testing.T) {
	var cfg struct {
		Port    int
		Timeout time.Duration
	}
	err := Decode(map[string]any{"PORT": "9000", "TIMEOUT": "2m"}, &cfg)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cfg.Port != 9000 || cfg.Timeout != 2*time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestDecodeMissingField(t *testing.T) {
	var cfg struct {
		AppEnv string
		DBHost string
	}
	err := Decode(map[string]any{"APP_ENV": "local"}, &cfg)
	if err == nil {
		t.Fatal("Decode() expected error for unset field")
	}
	if !strings.Contains(err.Error(), "DBHost") {
		t.Errorf("error = %v, want it to name DBHost", err)
	}
}

func TestDecodeTarget(t *testing.T) {
	var cfg appConfig
	if err := Decode(map[string]any{}, cfg); err == nil {
		t.Error("Decode() expected error for non-pointer target")
	}
}
