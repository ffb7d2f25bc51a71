// Package config loads the daemon configuration from TOML files.
package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const defaultAPIURL = "https://api.muzikax.com"

type Config struct {
	// APIURL is the MuzikaX backend base URL.
	APIURL string `koanf:"api_url"`
	// AuthToken authenticates backend calls. Usually supplied via the
	// PULSE_API_TOKEN environment variable instead of the config file.
	AuthToken string `koanf:"auth_token"`

	Log    LogConfig    `koanf:"log"`
	Lastfm LastfmConfig `koanf:"lastfm"`
	MPRIS  MPRISConfig  `koanf:"mpris"`
	Notify NotifyConfig `koanf:"notify"`
}

// LogConfig holds logging and rotation settings.
type LogConfig struct {
	Level      string `koanf:"level"` // "debug", "info", "warn", "error" (default: "info")
	Path       string `koanf:"path"`  // empty means the XDG state directory
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   *bool  `koanf:"compress"`
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

// MPRISConfig controls the MPRIS D-Bus surface.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// NotifyConfig controls desktop notifications.
type NotifyConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		APIURL: defaultAPIURL,
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.Log.Path != "" {
		cfg.Log.Path = expandPath(cfg.Log.Path)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/pulse/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "pulse", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// MPRISEnabled reports whether the MPRIS surface should start.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// NotifyEnabled reports whether desktop notifications should be sent.
func (c *Config) NotifyEnabled() bool {
	return c.Notify.Enabled == nil || *c.Notify.Enabled
}
