// Package config handles loading and saving cattree configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/cattree/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "cattree"

// UIConfig holds viewer preferences.
type UIConfig struct {
	Locale        string `yaml:"locale,omitempty"`       // Collation locale for the selection panel
	ExpandDepth   int    `yaml:"expand_depth"`           // Nodes at or above this depth start expanded
	ShowSelection *bool  `yaml:"show_selection,omitempty"` // Selection panel visible at startup
}

// WatchConfig controls live reload of the source file.
type WatchConfig struct {
	Enabled        *bool `yaml:"enabled,omitempty"`
	DebounceMS     int   `yaml:"debounce_ms,omitempty"`
	PollIntervalMS int   `yaml:"poll_interval_ms,omitempty"`
}

// ExtractConfig holds CSV extraction defaults.
type ExtractConfig struct {
	Column      string   `yaml:"column,omitempty"`
	MaxLevels   int      `yaml:"max_levels,omitempty"`
	StripTokens []string `yaml:"strip_tokens,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Source  string        `yaml:"source,omitempty"`
	UI      UIConfig      `yaml:"ui"`
	Watch   WatchConfig   `yaml:"watch"`
	Extract ExtractConfig `yaml:"extract"`
}

func boolPtr(b bool) *bool { return &b }

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			Locale:        "it",
			ExpandDepth:   0,
			ShowSelection: boolPtr(true),
		},
		Watch: WatchConfig{
			Enabled:        boolPtr(true),
			DebounceMS:     200,
			PollIntervalMS: 2000,
		},
		Extract: ExtractConfig{
			Column:      "Categories_IT",
			MaxLevels:   3,
			StripTokens: []string{"Root", "Home"},
		},
	}
}

// SelectionVisible reports whether the selection panel starts visible.
func (u UIConfig) SelectionVisible() bool {
	return u.ShowSelection == nil || *u.ShowSelection
}

// IsEnabled reports whether live reload is on.
func (w WatchConfig) IsEnabled() bool {
	return w.Enabled == nil || *w.Enabled
}

// Debounce returns the debounce period.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// PollInterval returns the polling interval.
func (w WatchConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMS) * time.Millisecond
}

// Validate reports every out-of-range value in one error.
func (c Config) Validate() error {
	var errs []error
	if c.UI.ExpandDepth < -1 {
		errs = append(errs, fmt.Errorf("ui.expand_depth must be >= -1, got %d", c.UI.ExpandDepth))
	}
	if c.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS))
	}
	if c.Watch.PollIntervalMS < 0 {
		errs = append(errs, fmt.Errorf("watch.poll_interval_ms must be >= 0, got %d", c.Watch.PollIntervalMS))
	}
	if c.Extract.MaxLevels < 0 {
		errs = append(errs, fmt.Errorf("extract.max_levels must be >= 0, got %d", c.Extract.MaxLevels))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the XDG config directory for cattree.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Keys missing from the file keep
// their defaults. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg.Source = expandHome(cfg.Source)
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
