package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/corvidterm/corvid/grid"
)

// Config holds the terminal configuration.
type Config struct {
	Fg             string  `toml:"fg"`
	Bg             string  `toml:"bg"`
	TabWidth       uint8   `toml:"tab_width"`
	BracketedPaste bool    `toml:"bracketed_paste"`
	Shell          string  `toml:"shell"`
	FontSize       float64 `toml:"font_size"`
	Width          int     `toml:"width"`
	Height         int     `toml:"height"`
}

// DefaultConfig returns the built-in defaults: white on black, tab
// width 8, bracketed paste off.
func DefaultConfig() *Config {
	return &Config{
		Fg:       grid.White.String(),
		Bg:       grid.Black.String(),
		TabWidth: 8,
		FontSize: 15,
		Width:    900,
		Height:   600,
	}
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".corvid.toml"
	}
	return filepath.Join(homeDir, ".config", "corvid", "config.toml")
}

// Load reads the configuration from disk. A missing file yields the
// defaults; a malformed file is an error.
func Load() (*Config, error) {
	return loadFrom(GetConfigPath())
}

func loadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.TabWidth < 1 {
		cfg.TabWidth = 1
	}
	if _, _, err := cfg.Colors(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Colors parses the configured foreground and background colors.
func (c *Config) Colors() (fg, bg grid.Color, err error) {
	fg, err = grid.ParseColor(c.Fg)
	if err != nil {
		return grid.White, grid.Black, err
	}
	bg, err = grid.ParseColor(c.Bg)
	if err != nil {
		return grid.White, grid.Black, err
	}
	return fg, bg, nil
}
