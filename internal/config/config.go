// Package config loads runtime configuration for bandvaultd/bandvaultctl
// from the environment via github.com/spf13/viper (spec.md §6.5).
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the resolved runtime settings for a Collection instance and
// its transports.
type Config struct {
	MusicRootPath     string
	CacheDurationDays int
	CacheMaxEntries   int
	LogLevel          string
	WatchEnabled      bool
	ScanInterval      time.Duration
	HTTPAddr          string
}

// CacheTTL returns CacheDurationDays as a time.Duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheDurationDays) * 24 * time.Hour
}

// Load reads configuration from the environment, applying the defaults
// spec.md §6.5 documents. MUSIC_ROOT_PATH is required and must be absolute.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("CACHE_DURATION_DAYS", 30)
	v.SetDefault("CACHE_MAX_ENTRIES", 10000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WATCH_ENABLED", false)
	v.SetDefault("SCAN_INTERVAL", "1h")
	v.SetDefault("HTTP_ADDR", ":8090")

	root := v.GetString("MUSIC_ROOT_PATH")
	if root == "" {
		return Config{}, fmt.Errorf("config: MUSIC_ROOT_PATH is required")
	}
	if !filepath.IsAbs(root) {
		return Config{}, fmt.Errorf("config: MUSIC_ROOT_PATH must be an absolute path, got %q", root)
	}

	interval, err := time.ParseDuration(v.GetString("SCAN_INTERVAL"))
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid SCAN_INTERVAL: %w", err)
	}

	return Config{
		MusicRootPath:     root,
		CacheDurationDays: v.GetInt("CACHE_DURATION_DAYS"),
		CacheMaxEntries:   v.GetInt("CACHE_MAX_ENTRIES"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		WatchEnabled:      v.GetBool("WATCH_ENABLED"),
		ScanInterval:      interval,
		HTTPAddr:          v.GetString("HTTP_ADDR"),
	}, nil
}
