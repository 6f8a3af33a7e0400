package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MUSIC_ROOT_PATH", "CACHE_DURATION_DAYS", "LOG_LEVEL", "WATCH_ENABLED", "SCAN_INTERVAL", "HTTP_ADDR"} {
		os.Unsetenv(k)
	}
}

func TestLoad_RequiresAbsoluteMusicRoot(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	os.Setenv("MUSIC_ROOT_PATH", "relative/path")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a relative MUSIC_ROOT_PATH")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	os.Setenv("MUSIC_ROOT_PATH", "/music")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheDurationDays != 30 || cfg.LogLevel != "info" || cfg.HTTPAddr != ":8090" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	os.Setenv("MUSIC_ROOT_PATH", "/music")
	os.Setenv("CACHE_DURATION_DAYS", "7")
	os.Setenv("LOG_LEVEL", "debug")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheDurationDays != 7 || cfg.LogLevel != "debug" {
		t.Fatalf("expected overrides to apply: %+v", cfg)
	}
}
