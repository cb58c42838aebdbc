package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aleksandar-had/feedback-arc-set/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fbarc.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadRunConfigDefaults(t *testing.T) {
	cfg, err := loadRunConfig("")
	if err != nil {
		t.Fatalf("loadRunConfig() error: %v", err)
	}
	if cfg.Generators != 4 {
		t.Errorf("Generators = %d, want 4", cfg.Generators)
	}
	if cfg.SessionPrefix != defaultSession {
		t.Errorf("SessionPrefix = %q, want %q", cfg.SessionPrefix, defaultSession)
	}
	if cfg.Seed != 0 {
		t.Errorf("Seed = %d, want 0", cfg.Seed)
	}
}

func TestLoadRunConfigFile(t *testing.T) {
	path := writeConfig(t, `
generators = 8
session_prefix = "bench"
seed = 42
`)

	cfg, err := loadRunConfig(path)
	if err != nil {
		t.Fatalf("loadRunConfig() error: %v", err)
	}
	if cfg.Generators != 8 {
		t.Errorf("Generators = %d, want 8", cfg.Generators)
	}
	if cfg.SessionPrefix != "bench" {
		t.Errorf("SessionPrefix = %q, want %q", cfg.SessionPrefix, "bench")
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
}

func TestLoadRunConfigPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `generators = 2`)

	cfg, err := loadRunConfig(path)
	if err != nil {
		t.Fatalf("loadRunConfig() error: %v", err)
	}
	if cfg.Generators != 2 {
		t.Errorf("Generators = %d, want 2", cfg.Generators)
	}
	if cfg.SessionPrefix != defaultSession {
		t.Errorf("SessionPrefix = %q, want default %q", cfg.SessionPrefix, defaultSession)
	}
}

func TestLoadRunConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "zero generators", content: `generators = 0`},
		{name: "negative generators", content: `generators = -3`},
		{name: "empty prefix", content: `session_prefix = ""`},
		{name: "malformed toml", content: `generators = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := loadRunConfig(path)
			if err == nil {
				t.Fatal("loadRunConfig() expected error, got nil")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	_, err := loadRunConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("loadRunConfig() expected error for missing file")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}
