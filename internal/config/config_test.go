package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lorecast/internal/config"
)

func TestLoadDefaultsWhenNoFileExists(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStatic := filepath.Join(tempHome, ".local", "share", "lorecast", "static")
	if cfg.Paths.StaticDir != wantStatic {
		t.Fatalf("static dir = %q, want %q", cfg.Paths.StaticDir, wantStatic)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Workflow.MaxRetries != 5 || cfg.Workflow.SyncMaxRetries != 3 {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Workflow)
	}
	if cfg.Sync.DispatchDelay != 300 || cfg.Sync.LockTTL != 600 {
		t.Fatalf("unexpected sync defaults: %+v", cfg.Sync)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[redis]",
		`addr = "redis.internal:6380"`,
		`prefix = " custom "`,
		"",
		"[workflow]",
		"max_retries = 2",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Redis.Prefix != "custom" {
		t.Fatalf("prefix not trimmed: %q", cfg.Redis.Prefix)
	}
	if cfg.Workflow.MaxRetries != 2 {
		t.Fatalf("max retries = %d", cfg.Workflow.MaxRetries)
	}
	// Untouched sections keep their defaults.
	if cfg.TTS.Binary != "piper" {
		t.Fatalf("tts binary = %q", cfg.TTS.Binary)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[workflow]\nretry_base_seconds = -1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestWriteSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")

	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config not detected")
	}
	if cfg.Redis.Prefix == "" {
		t.Fatal("sample config missing redis prefix")
	}
}
