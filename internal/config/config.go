// Package config loads the bot configuration from a YAML file with
// environment variable overrides for credentials and endpoints.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full bot configuration.
type Config struct {
	Binance  BinanceConfig  `yaml:"binance"`
	Telegram TelegramConfig `yaml:"telegram"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Files    FilesConfig    `yaml:"files"`
	Database DatabaseConfig `yaml:"database"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	LogFile  string         `yaml:"log_file"`
	Proxy    string         `yaml:"proxy"`
}

type BinanceConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	SecretKey string `yaml:"secret_key"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type MonitorConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
	UniverseSize    int `yaml:"universe_size"`
}

type FilesConfig struct {
	Symbols   string `yaml:"symbols"`
	Pivots    string `yaml:"pivots"`
	Active    string `yaml:"active"`
	Closed    string `yaml:"closed"`
	CSVExport string `yaml:"csv_export"`
}

type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type ScheduleConfig struct {
	UniverseCron string `yaml:"universe_cron"`
	ExportCron   string `yaml:"export_cron"`
}

type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Load reads path, applies environment overrides and defaults, and
// validates the result. A missing file is not an error; env-only setups
// are supported.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env + defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrideString(&c.Binance.APIKey, "API_KEY")
	overrideString(&c.Binance.SecretKey, "SECRET_KEY")
	overrideString(&c.Binance.BaseURL, "BINANCE_BASE_URL")
	overrideString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	overrideString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	overrideString(&c.Database.SQLitePath, "SQLITE_PATH")
	overrideString(&c.Proxy, "HTTPS_PROXY")
}

func (c *Config) applyDefaults() {
	if c.Monitor.IntervalMinutes <= 0 {
		c.Monitor.IntervalMinutes = 15
	}
	if c.Monitor.UniverseSize <= 0 {
		c.Monitor.UniverseSize = 100
	}
	if c.Files.Symbols == "" {
		c.Files.Symbols = "top_100_symbols.json"
	}
	if c.Files.Pivots == "" {
		c.Files.Pivots = "daily_pivots.json"
	}
	if c.Files.Active == "" {
		c.Files.Active = "active_trades.json"
	}
	if c.Files.Closed == "" {
		c.Files.Closed = "closed_trades.json"
	}
	if c.Files.CSVExport == "" {
		c.Files.CSVExport = "historico_trades.csv"
	}
	if c.LogFile == "" {
		c.LogFile = "bot_activity.log"
	}
	if c.Schedule.UniverseCron == "" {
		c.Schedule.UniverseCron = "0 5 0 * * *" // 00:05 UTC daily
	}
	if c.Schedule.ExportCron == "" {
		c.Schedule.ExportCron = "0 30 0 * * *" // 00:30 UTC daily
	}
}

// Validate enforces the hard requirements. Exchange credentials are the
// only fatal omission; everything else degrades to a no-op.
func (c *Config) Validate() error {
	if c.Binance.APIKey == "" || c.Binance.SecretKey == "" {
		return fmt.Errorf("binance api_key and secret_key are required")
	}
	if c.Monitor.IntervalMinutes < 1 {
		return fmt.Errorf("monitor interval must be at least 1 minute")
	}
	return nil
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func overrideString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
