// Package config provides configuration management for the bot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"sahamwatch/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Market   MarketConfig   `mapstructure:"market"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

// TelegramConfig holds the bot credentials and polling settings.
type TelegramConfig struct {
	BotToken       string `mapstructure:"bot_token"`
	PollTimeoutSec int    `mapstructure:"poll_timeout_seconds"`
}

// PollTimeout returns the long-poll timeout as a duration.
func (t TelegramConfig) PollTimeout() time.Duration {
	return time.Duration(t.PollTimeoutSec) * time.Second
}

// MarketConfig holds market-data gateway settings.
type MarketConfig struct {
	Suffix  string `mapstructure:"suffix"`   // exchange suffix appended to bare tickers
	BaseURL string `mapstructure:"base_url"` // quote endpoint override, mainly for tests
}

// ScanConfig holds the alert engine scheduling policy.
type ScanConfig struct {
	IntervalSeconds     int `mapstructure:"interval_seconds"`
	InitialDelaySeconds int `mapstructure:"initial_delay_seconds"`
}

// Interval returns the scan interval as a duration.
func (s ScanConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// InitialDelay returns the warm-up delay as a duration.
func (s ScanConfig) InitialDelay() time.Duration {
	return time.Duration(s.InitialDelaySeconds) * time.Second
}

// StorageConfig holds persistence paths.
type StorageConfig struct {
	DataFile    string `mapstructure:"data_file"`
	JournalFile string `mapstructure:"journal_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/sahamwatch"
	}
	return filepath.Join(home, ".config", "sahamwatch")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		// Running purely off defaults and environment is fine.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("telegram.poll_timeout_seconds", 30)
	v.SetDefault("market.suffix", ".JK")
	v.SetDefault("scan.interval_seconds", 300)
	v.SetDefault("scan.initial_delay_seconds", 10)
	v.SetDefault("storage.data_file", filepath.Join(configDir, "bot_data.json"))
	v.SetDefault("storage.journal_file", filepath.Join(configDir, "journal.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("SAHAMWATCH_DATA_FILE"); v != "" {
		cfg.Storage.DataFile = v
	}
	if v := os.Getenv("SAHAMWATCH_SCAN_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scan.IntervalSeconds = n
		}
	}
	if v := os.Getenv("SAHAMWATCH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate validates the configuration. A missing bot token is fatal: the
// process must not start serving without credentials.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return errors.ErrTokenMissing
	}
	if c.Scan.IntervalSeconds <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "scan.interval_seconds must be positive, got %d", c.Scan.IntervalSeconds)
	}
	if c.Scan.InitialDelaySeconds < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "scan.initial_delay_seconds must not be negative, got %d", c.Scan.InitialDelaySeconds)
	}
	if c.Storage.DataFile == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "storage.data_file must not be empty")
	}
	return nil
}
