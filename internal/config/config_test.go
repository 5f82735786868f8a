package config

import (
	"os"
	"path/filepath"
	"testing"

	"sahamwatch/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Scan.IntervalSeconds != 300 {
		t.Errorf("default scan interval = %d, want 300", cfg.Scan.IntervalSeconds)
	}
	if cfg.Scan.InitialDelaySeconds != 10 {
		t.Errorf("default initial delay = %d, want 10", cfg.Scan.InitialDelaySeconds)
	}
	if cfg.Market.Suffix != ".JK" {
		t.Errorf("default market suffix = %q, want .JK", cfg.Market.Suffix)
	}
	if cfg.Storage.DataFile == "" {
		t.Error("default data file path is empty")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[scan]
interval_seconds = 60
initial_delay_seconds = 2

[telegram]
bot_token = "from-file"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scan.IntervalSeconds != 60 || cfg.Scan.InitialDelaySeconds != 2 {
		t.Errorf("config file not applied: %+v", cfg.Scan)
	}
	if cfg.Telegram.BotToken != "from-file" {
		t.Errorf("bot token = %q", cfg.Telegram.BotToken)
	}
}

func TestEnvOverridesBeatConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[telegram]
bot_token = "from-file"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_TOKEN", "from-env")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Errorf("env override not applied: %q", cfg.Telegram.BotToken)
	}
}

func TestValidateRequiresToken(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := cfg.Validate(); !errors.Is(err, errors.ErrTokenMissing) {
		t.Errorf("expected ErrTokenMissing, got %v", err)
	}

	cfg.Telegram.BotToken = "123:abc"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidateRejectsBadScanInterval(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Telegram.BotToken = "123:abc"

	cfg.Scan.IntervalSeconds = 0
	if err := cfg.Validate(); !errors.Is(err, errors.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid for zero interval, got %v", err)
	}

	cfg.Scan.IntervalSeconds = 300
	cfg.Scan.InitialDelaySeconds = -1
	if err := cfg.Validate(); !errors.Is(err, errors.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid for negative delay, got %v", err)
	}
}
