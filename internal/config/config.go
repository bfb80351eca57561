package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Database string `koanf:"database"` // SQLite path; empty means the XDG data dir

	Log      LogConfig      `koanf:"log"`
	Feed     FeedConfig     `koanf:"feed"`
	Playback PlaybackConfig `koanf:"playback"`
	Location LocationConfig `koanf:"location"`
	Import   ImportConfig   `koanf:"import"`

	// Control server (enabled when listen is set)
	Server ServerConfig `koanf:"server"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	File  string `koanf:"file"`  // empty discards logs
	Level string `koanf:"level"` // zerolog level name (default: "info")
}

// FeedConfig holds feed fetching settings.
type FeedConfig struct {
	UserAgent            string `koanf:"user_agent"`
	MaxBodySize          int64  `koanf:"max_body_size"`          // bytes (default: 32 MiB)
	AllowPrivateNetworks bool   `koanf:"allow_private_networks"` // allow loopback and LAN feeds
}

// PlaybackConfig holds session playback settings.
type PlaybackConfig struct {
	Autoplay          *bool  `koanf:"autoplay"`           // chain to the next episode on end (default: true)
	PreviousThreshold string `koanf:"previous_threshold"` // e.g. "3s" (default: 3s)
	Order             string `koanf:"order"`              // "listed", "date_asc" or "date_desc"
}

// LocationConfig holds permalink settings.
type LocationConfig struct {
	Base string `koanf:"base"` // e.g. "http://localhost:8080/" (default: "/")
}

// ImportConfig holds multi-feed import pacing.
type ImportConfig struct {
	Rate  float64 `koanf:"rate"`  // fetches per second (default: 2)
	Burst int     `koanf:"burst"` // default: 1
}

// ServerConfig holds the control server settings.
type ServerConfig struct {
	Listen string `koanf:"listen"` // e.g. "127.0.0.1:7777"
}

// Load reads the config files in order of priority, last wins.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given TOML files, skipping missing ones. Later files
// override earlier ones.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in paths
	cfg.Database = expandPath(cfg.Database)
	cfg.Log.File = expandPath(cfg.Log.File)

	cfg.Playback.Order = strings.TrimSpace(strings.ToLower(cfg.Playback.Order))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/wavecast/config.toml
		filepath.Join(xdg.ConfigHome, "wavecast", "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasServer returns true if the control server is enabled.
func (c *Config) HasServer() bool {
	return c.Server.Listen != ""
}

// LogLevel returns the configured log level, "info" when unset.
func (c *Config) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.Autoplay == nil {
		on := true
		cfg.Autoplay = &on
	}
	if _, err := time.ParseDuration(cfg.PreviousThreshold); err != nil {
		cfg.PreviousThreshold = "3s"
	}
	if cfg.Order == "" {
		cfg.Order = "listed"
	}

	return cfg
}

// AutoplayEnabled returns whether episodes chain on end (default: true).
func (c PlaybackConfig) AutoplayEnabled() bool {
	return c.Autoplay == nil || *c.Autoplay
}

// Threshold returns the previous-track threshold, 3s when unset or invalid.
func (c PlaybackConfig) Threshold() time.Duration {
	d, err := time.ParseDuration(c.PreviousThreshold)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}

// GetLocationBase returns the permalink base, "/" when unset.
func (c *Config) GetLocationBase() string {
	if c.Location.Base == "" {
		return "/"
	}
	return c.Location.Base
}

// GetImportConfig returns the import configuration with defaults applied.
func (c *Config) GetImportConfig() ImportConfig {
	cfg := c.Import

	if cfg.Rate <= 0 {
		cfg.Rate = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return cfg
}
