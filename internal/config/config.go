// Package config loads the daemon configuration from a TOML file, with
// sensible defaults for every field so a missing or partial file still
// yields a runnable setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ayusman/stroked/internal/tracker"
)

// Config is the full daemon configuration.
type Config struct {
	Capture  CaptureConfig  `toml:"capture"`
	Tokens   TokenConfig    `toml:"tokens"`
	Matching MatchingConfig `toml:"matching"`
	Paths    PathsConfig    `toml:"paths"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// CaptureConfig controls raw stroke capture.
type CaptureConfig struct {
	// TriggerButton is the mouse button that starts a gesture while held.
	TriggerButton string `toml:"trigger_button"`
	// MaxStrokeDurationMs aborts strokes the user likely forgot about.
	MaxStrokeDurationMs int `toml:"max_stroke_duration_ms"`
	// MinPointDistancePx drops capture points closer than this to the last.
	MinPointDistancePx float64 `toml:"min_point_distance_px"`
	// MaxPoints caps the raw point buffer per stroke.
	MaxPoints int `toml:"max_points"`
}

// TokenConfig controls the streaming direction tokenizer.
type TokenConfig struct {
	DirMode          tracker.DirMode `toml:"dir_mode"`
	ThresholdPx      float64         `toml:"threshold_px"`
	LongThresholdXPx float64         `toml:"long_threshold_x_px"`
	LongThresholdYPx float64         `toml:"long_threshold_y_px"`
	MaxTokens        int             `toml:"max_tokens"`
}

// MatchingConfig controls preprocessing and DTW matching.
type MatchingConfig struct {
	SampleCount      int     `toml:"sample_count"`
	SmoothingWindow  int     `toml:"smoothing_window"`
	MinTrackLength   float64 `toml:"min_track_length"`
	MaxMatchDistance float64 `toml:"max_match_distance"`
	Sampling         bool    `toml:"sampling"`
	Smoothing        bool    `toml:"smoothing"`
}

// PathsConfig locates the on-disk databases.
type PathsConfig struct {
	ProfileDB string `toml:"profile_db"`
	Library   string `toml:"library"`
	UsageLog  string `toml:"usage_log"`
	UsageDB   string `toml:"usage_db"`
}

// ServerConfig controls the local control API.
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		Capture: CaptureConfig{
			TriggerButton:       "right",
			MaxStrokeDurationMs: 10000,
			MinPointDistancePx:  2.0,
			MaxPoints:           4096,
		},
		Tokens: TokenConfig{
			DirMode:          tracker.DirModeFour,
			ThresholdPx:      16,
			LongThresholdXPx: 220,
			LongThresholdYPx: 160,
			MaxTokens:        24,
		},
		Matching: MatchingConfig{
			SampleCount:      64,
			SmoothingWindow:  5,
			MinTrackLength:   60,
			MaxMatchDistance: 0.35,
			Sampling:         true,
			Smoothing:        true,
		},
		Paths: PathsConfig{
			ProfileDB: filepath.Join(dataDir, "profiles.json"),
			Library:   filepath.Join(dataDir, "library.json"),
			UsageLog:  filepath.Join(dataDir, "usage.json"),
			UsageDB:   filepath.Join(dataDir, "usage.db"),
		},
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:7733",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path, or searches the standard locations
// when path is empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfig()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Paths.ProfileDB = expandHome(cfg.Paths.ProfileDB)
	cfg.Paths.Library = expandHome(cfg.Paths.Library)
	cfg.Paths.UsageLog = expandHome(cfg.Paths.UsageLog)
	cfg.Paths.UsageDB = expandHome(cfg.Paths.UsageDB)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Tokens.DirMode {
	case tracker.DirModeFour, tracker.DirModeEight:
	default:
		return fmt.Errorf("invalid dir_mode %q", c.Tokens.DirMode)
	}
	if c.Matching.SampleCount < 2 {
		return fmt.Errorf("sample_count must be at least 2, got %d", c.Matching.SampleCount)
	}
	if c.Matching.MaxMatchDistance <= 0 {
		return fmt.Errorf("max_match_distance must be positive, got %v", c.Matching.MaxMatchDistance)
	}
	if c.Tokens.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be at least 1, got %d", c.Tokens.MaxTokens)
	}
	return nil
}

// configPaths lists the search order for the config file.
func configPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "stroked", "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "stroked", "config.toml"),
			filepath.Join(home, ".stroked.toml"),
		)
	}
	return paths
}

func findConfig() string {
	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "stroked")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "stroked")
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
