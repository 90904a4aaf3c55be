// Package config handles loading and saving sw configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/slidewalk/config.yaml
//   - State:   ~/.local/state/slidewalk/ (recent decks)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Deck represents a registered deck directory in the config.
type Deck struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	ShowNotes   bool   `yaml:"show_notes,omitempty"`   // Open with the notes pane visible
	NotesWidth  int    `yaml:"notes_width,omitempty"`  // Columns reserved for the notes pane
	InitialHash string `yaml:"initial_hash,omitempty"` // Address to open decks at ("#1" if empty)
}

// WatchConfig controls live reloading of slide files.
type WatchConfig struct {
	Disabled     bool `yaml:"disabled,omitempty"`
	DebounceMs   int  `yaml:"debounce_ms,omitempty"`    // Delay before reloading after a change
	PollFallback bool `yaml:"poll_fallback,omitempty"`  // Poll when inotify is unavailable
	PollMs       int  `yaml:"poll_ms,omitempty"`        // Polling interval
}

// Config is the top-level configuration for sw.
type Config struct {
	Decks []Deck      `yaml:"decks,omitempty"`
	UI    UIConfig    `yaml:"ui,omitempty"`
	Watch WatchConfig `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			NotesWidth: 40,
		},
		Watch: WatchConfig{
			DebounceMs:   250,
			PollFallback: true,
			PollMs:       2000,
		},
	}
}

// ConfigDir returns the XDG config directory for sw.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "slidewalk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "slidewalk")
}

// StateDir returns the XDG state directory for sw.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "slidewalk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "slidewalk")
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

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
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

	// Expand ~ in deck paths
	for i := range cfg.Decks {
		cfg.Decks[i].Path = expandHome(cfg.Decks[i].Path)
	}

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
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
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

// FindDeck returns the registered deck with the given name, or nil.
func (c Config) FindDeck(name string) *Deck {
	for i := range c.Decks {
		if strings.EqualFold(c.Decks[i].Name, name) {
			return &c.Decks[i]
		}
	}
	return nil
}

// ResolvedPath returns the deck path with ~ expanded.
func (d Deck) ResolvedPath() string {
	return expandHome(d.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
