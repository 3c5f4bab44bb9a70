package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexballas/xexplorer/internal/logging"
)

// Config is the in-memory representation of ~/.config/xexplorer/config.yaml.
type Config struct {
	Log        logging.Config `yaml:"log"`
	Explorer   Explorer       `yaml:"explorer"`
	Thumbnails Thumbnails     `yaml:"thumbnails"`
}

// Explorer holds the grid and paging settings of the explorer view.
type Explorer struct {
	PageSize     int     `yaml:"page_size"`
	Overscan     int     `yaml:"overscan"`
	LoadMoreSize float32 `yaml:"load_more_size"`
	ItemSize     float32 `yaml:"item_size"`
	Columns      int     `yaml:"columns,omitempty"`
	Gap          float32 `yaml:"gap"`
	Padding      float32 `yaml:"padding"`
	ShowHidden   bool    `yaml:"show_hidden"`
	SingleSelect bool    `yaml:"single_select,omitempty"`
}

type Thumbnails struct {
	Enabled       bool   `yaml:"enabled"`
	CacheDir      string `yaml:"cache_dir,omitempty"`
	MemoryEntries int    `yaml:"memory_entries"`
	Workers       int    `yaml:"workers"`
	// FFmpeg is the binary used to grab video frames.
	FFmpeg string `yaml:"ffmpeg,omitempty"`
}

// Dir returns the absolute path to the xexplorer config directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, "xexplorer"), nil
}

// Path returns the absolute path to the default config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Log: logging.Config{Level: "info", Format: "console", OutputPath: "stderr"},
		Explorer: Explorer{
			PageSize:     100,
			Overscan:     2,
			LoadMoreSize: 200,
			ItemSize:     96,
			Gap:          8,
			Padding:      8,
		},
		Thumbnails: Thumbnails{
			Enabled:       true,
			MemoryEntries: 512,
			Workers:       4,
			FFmpeg:        "ffmpeg",
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	cfg.Thumbnails.CacheDir, err = ExpandPath(cfg.Thumbnails.CacheDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the explorer cannot lay out with.
func (c *Config) Validate() error {
	e := c.Explorer
	switch {
	case e.PageSize <= 0:
		return fmt.Errorf("explorer.page_size must be positive, got %d", e.PageSize)
	case e.Overscan < 0:
		return fmt.Errorf("explorer.overscan must not be negative, got %d", e.Overscan)
	case e.Columns < 0:
		return fmt.Errorf("explorer.columns must not be negative, got %d", e.Columns)
	case e.ItemSize <= 0 && e.Columns == 0:
		return errors.New("explorer.item_size is required when columns is auto")
	case e.Gap < 0 || e.Padding < 0 || e.LoadMoreSize < 0:
		return errors.New("explorer gap, padding and load_more_size must not be negative")
	}
	if c.Thumbnails.Workers <= 0 {
		c.Thumbnails.Workers = 1
	}
	return nil
}

// Save marshals cfg and writes it to path, creating the directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
