package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("SECRET_KEY", "s")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("env-only load: %v", err)
	}
	if cfg.Binance.APIKey != "k" || cfg.Binance.SecretKey != "s" {
		t.Errorf("env credentials not applied: %+v", cfg.Binance)
	}
	if cfg.Monitor.IntervalMinutes != 15 {
		t.Errorf("expected default interval 15, got %d", cfg.Monitor.IntervalMinutes)
	}
	if cfg.Files.Active != "active_trades.json" {
		t.Errorf("expected default active file, got %q", cfg.Files.Active)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without credentials")
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
binance:
  api_key: "file-key"
  secret_key: "file-secret"
monitor:
  interval_minutes: 5
  universe_size: 20
telegram:
  bot_token: "tok"
  chat_id: "chat"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Binance.APIKey != "env-key" {
		t.Errorf("env must override file, got %q", cfg.Binance.APIKey)
	}
	if cfg.Binance.SecretKey != "file-secret" {
		t.Errorf("file value lost, got %q", cfg.Binance.SecretKey)
	}
	if cfg.Monitor.IntervalMinutes != 5 || cfg.Monitor.UniverseSize != 20 {
		t.Errorf("monitor section not applied: %+v", cfg.Monitor)
	}
	if !cfg.TelegramEnabled() {
		t.Error("telegram should be enabled")
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("SECRET_KEY", "")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected validation error without exchange credentials")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("binance: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
