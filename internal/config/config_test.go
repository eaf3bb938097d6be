package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/stroked/internal/tracker"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if cfg.Tokens.DirMode != tracker.DirModeFour {
		t.Errorf("expected default dir mode four, got %q", cfg.Tokens.DirMode)
	}
	if cfg.Matching.SampleCount != 64 || cfg.Matching.SmoothingWindow != 5 {
		t.Errorf("unexpected matching defaults: %+v", cfg.Matching)
	}
	if cfg.Server.ListenAddr == "" {
		t.Error("expected a default listen address")
	}
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[tokens]
dir_mode = "eight"
threshold_px = 20.0

[server]
listen_addr = "127.0.0.1:9000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Tokens.DirMode != tracker.DirModeEight {
		t.Errorf("expected eight mode, got %q", cfg.Tokens.DirMode)
	}
	if cfg.Tokens.ThresholdPx != 20.0 {
		t.Errorf("expected threshold 20, got %v", cfg.Tokens.ThresholdPx)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("expected overridden listen addr, got %q", cfg.Server.ListenAddr)
	}
	// Untouched sections keep their defaults.
	if cfg.Matching.SampleCount != 64 {
		t.Errorf("expected default sample count, got %d", cfg.Matching.SampleCount)
	}
	if cfg.Capture.TriggerButton != "right" {
		t.Errorf("expected default trigger button, got %q", cfg.Capture.TriggerButton)
	}
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad dir mode", "[tokens]\ndir_mode = \"sixteen\"\n"},
		{"sample count too small", "[matching]\nsample_count = 1\n"},
		{"non-positive match distance", "[matching]\nmax_match_distance = 0.0\n"},
		{"zero max tokens", "[tokens]\nmax_tokens = 0\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MalformedTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[tokens\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed TOML")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory in test environment")
	}

	if got := expandHome("~/data/profiles.json"); got != filepath.Join(home, "data", "profiles.json") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs/path.json"); got != "/abs/path.json" {
		t.Errorf("absolute path must pass through, got %q", got)
	}
}
