package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Pipeline struct {
	MaxInFlight       int      `json:"max_in_flight"`
	HTTPTimeoutSec    int      `json:"http_timeout_sec"`
	BrowserTimeoutSec int      `json:"browser_timeout_sec"`
	Attempts          int      `json:"attempts"`
	BackoffSec        int      `json:"backoff_sec"`
	BreakAfter        int      `json:"break_after"`
	CooldownMin       int      `json:"cooldown_min"`
	MinIntervalSec    int      `json:"min_interval_sec"`
	Currencies        []string `json:"currencies"`
}

type Schedule struct {
	Timezone string   `json:"timezone"`
	DailyAt  []string `json:"daily_at"`
	Hourly   bool     `json:"hourly"`
}

type Store struct {
	// Path is the badger directory. Empty keeps rates in memory only.
	Path string `json:"path"`
}

type Telegram struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
}

type Banks struct {
	Disabled         []string `json:"disabled"`
	ChromiumPath     string   `json:"chromium_path"`
	CBUSessionID     string   `json:"cbu_session_id"`
	AgrobankCookie   string   `json:"agrobank_cookie"`
	TengebankCookie  string   `json:"tengebank_cookie"`
	HamkorbankCookie string   `json:"hamkorbank_cookie"`
}

type Admin struct {
	// Token guards the override and manual-run endpoints. Empty
	// disables them entirely.
	Token string `json:"token"`
}

type Config struct {
	Server   Server   `json:"server"`
	Pipeline Pipeline `json:"pipeline"`
	Schedule Schedule `json:"schedule"`
	Store    Store    `json:"store"`
	Telegram Telegram `json:"telegram"`
	Banks    Banks    `json:"banks"`
	Admin    Admin    `json:"admin"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 30},
		Pipeline: Pipeline{
			MaxInFlight:       6,
			HTTPTimeoutSec:    15,
			BrowserTimeoutSec: 60,
			Attempts:          2,
			BackoffSec:        2,
			BreakAfter:        3,
			CooldownMin:       30,
			MinIntervalSec:    30,
			Currencies:        []string{"USD", "EUR", "RUB"},
		},
		Schedule: Schedule{
			Timezone: "Asia/Tashkent",
			DailyAt:  []string{"08:00", "09:10", "10:40", "11:11", "16:10"},
			Hourly:   true,
		},
		Store: Store{Path: "data"},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SCHEDULE_TZ"); v != "" {
		cfg.Schedule.Timezone = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Enabled = true
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		cfg.Admin.Token = v
	}
	if v := os.Getenv("CHROMIUM_PATH"); v != "" {
		cfg.Banks.ChromiumPath = v
	}
	if v := os.Getenv("CBU_SESSION_ID"); v != "" {
		cfg.Banks.CBUSessionID = v
	}
	if v := os.Getenv("AGROBANK_COOKIE"); v != "" {
		cfg.Banks.AgrobankCookie = v
	}
	if v := os.Getenv("TENGEBANK_COOKIE"); v != "" {
		cfg.Banks.TengebankCookie = v
	}
	if v := os.Getenv("HAMKORBANK_COOKIE"); v != "" {
		cfg.Banks.HamkorbankCookie = v
	}
}
