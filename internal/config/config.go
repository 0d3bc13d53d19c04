// Package config loads and watches Quill's TOML configuration.
//
// A missing config file is not an error: defaults apply. A malformed or
// invalid file is an error, and the live-reload watcher keeps the
// previous configuration in that case.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Validation errors.
var (
	ErrBadTabWidth   = errors.New("editor.tab_width must be positive")
	ErrBadUndoLimit  = errors.New("editor.max_undo_entries must be positive")
	ErrBadLineHeight = errors.New("view.line_height must be positive")
	ErrBadMargin     = errors.New("view.margin_multiplier must be positive")
	ErrBadLogLevel   = errors.New("log.level must be one of debug, info, warn, error")
)

// Config is the full configuration tree.
type Config struct {
	Editor EditorConfig `toml:"editor"`
	Search SearchConfig `toml:"search"`
	View   ViewConfig   `toml:"view"`
	Log    LogConfig    `toml:"log"`
}

// EditorConfig controls editing behavior.
type EditorConfig struct {
	TabWidth       int `toml:"tab_width"`
	MaxUndoEntries int `toml:"max_undo_entries"`
}

// SearchConfig controls search defaults.
type SearchConfig struct {
	CaseSensitive bool `toml:"case_sensitive"`
}

// ViewConfig controls rendering geometry.
type ViewConfig struct {
	LineHeight       float64 `toml:"line_height"`
	MarginMultiplier float64 `toml:"margin_multiplier"`
	SmoothScroll     bool    `toml:"smooth_scroll"`
}

// LogConfig controls the host shell's logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: EditorConfig{
			TabWidth:       4,
			MaxUndoEntries: 100,
		},
		Search: SearchConfig{
			CaseSensitive: false,
		},
		View: ViewConfig{
			LineHeight:       20,
			MarginMultiplier: 2,
			SmoothScroll:     true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path, layered over the defaults. A
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("validating config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Editor.TabWidth <= 0 {
		return ErrBadTabWidth
	}
	if c.Editor.MaxUndoEntries <= 0 {
		return ErrBadUndoLimit
	}
	if c.View.LineHeight <= 0 {
		return ErrBadLineHeight
	}
	if c.View.MarginMultiplier <= 0 {
		return ErrBadMargin
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrBadLogLevel
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "quill.toml"
	}
	return filepath.Join(dir, "quill", "config.toml")
}
