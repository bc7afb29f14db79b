package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/idelchi/dupfind/internal/recursion"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	return path
}

func TestGetDefaultIsValid(t *testing.T) {
	cfg := GetDefault()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Recursive != "" {
		t.Errorf("expected non-recursive default, got %q", cfg.Recursive)
	}

	if cfg.Strategy != "size" {
		t.Errorf("expected size strategy by default, got %q", cfg.Strategy)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load of missing optional file failed: %v", err)
	}

	if cfg.Output != GetDefault().Output {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	if _, err := Load(path, true); err == nil {
		t.Error("expected error for missing required config file")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
recursive: "unlimited"
strategy: direct
hash: blake2b-256
excludes:
  - '.*\.git/.*'
min_size: 4KiB
workers: 2
output: json
`)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Recursive != recursion.Unlimited {
		t.Errorf("Recursive = %q, want unlimited", cfg.Recursive)
	}

	if cfg.Strategy != "direct" || cfg.Hash != "blake2b-256" || cfg.Output != "json" {
		t.Errorf("unexpected values: %+v", cfg)
	}

	if !slices.Equal(cfg.Excludes, []string{`.*\.git/.*`}) {
		t.Errorf("Excludes = %v", cfg.Excludes)
	}

	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}

	if cfg.Engine != GetDefault().Engine || cfg.Buffer != GetDefault().Buffer {
		t.Errorf("unset keys lost their defaults: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad recursion", `recursive: "-1"`},
		{"bad strategy", `strategy: everything`},
		{"bad hash", `hash: md5`},
		{"bad engine", `engine: dfs`},
		{"bad min size", `min_size: lots`},
		{"zero workers", `workers: 0`},
		{"bad output", `output: xml`},
		{"malformed yaml", `excludes: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content), true); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadInvalidRecursionIsTyped(t *testing.T) {
	_, err := Load(writeConfig(t, `recursive: "abc"`), true)
	if !errors.Is(err, recursion.ErrInvalidRecursionDepth) {
		t.Errorf("error = %v, want ErrInvalidRecursionDepth", err)
	}
}
