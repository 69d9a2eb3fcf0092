package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Schedule.Timezone != "Asia/Tashkent" {
		t.Fatalf("timezone = %s", cfg.Schedule.Timezone)
	}
	if cfg.Pipeline.MaxInFlight != 6 || cfg.Pipeline.BreakAfter != 3 {
		t.Fatalf("pipeline defaults: %+v", cfg.Pipeline)
	}
	if len(cfg.Schedule.DailyAt) != 5 || !cfg.Schedule.Hourly {
		t.Fatalf("schedule defaults: %+v", cfg.Schedule)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"server":{"port":"9090"},"banks":{"disabled":["sqb","xb"]},"telegram":{"enabled":true,"bot_token":"tok","chat_id":"-1"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %s, want 9090", cfg.Server.Port)
	}
	if len(cfg.Banks.Disabled) != 2 {
		t.Fatalf("disabled = %v", cfg.Banks.Disabled)
	}
	if !cfg.Telegram.Enabled || cfg.Telegram.BotToken != "tok" {
		t.Fatalf("telegram: %+v", cfg.Telegram)
	}
	// untouched sections keep their defaults
	if cfg.Pipeline.HTTPTimeoutSec != 15 {
		t.Fatalf("http timeout = %d", cfg.Pipeline.HTTPTimeoutSec)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server":{"port":"9090"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("TELEGRAM_BOT_TOKEN", "secret")
	t.Setenv("ADMIN_TOKEN", "hunter2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("port = %s, want 7070", cfg.Server.Port)
	}
	if !cfg.Telegram.Enabled || cfg.Telegram.BotToken != "secret" {
		t.Fatalf("telegram: %+v", cfg.Telegram)
	}
	if cfg.Admin.Token != "hunter2" {
		t.Fatalf("admin token = %s", cfg.Admin.Token)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
