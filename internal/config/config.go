package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"Instagraph/internal/collector"
)

// WatchItem is one symbol refreshed on the schedule.
type WatchItem struct {
	Symbol   string `yaml:"symbol"`
	Exchange string `yaml:"exchange"`
}

// Config holds all application configuration.
type Config struct {
	Source struct {
		BaseURL         string        `yaml:"base_url"`
		UserAgent       string        `yaml:"user_agent"`
		Timeout         time.Duration `yaml:"timeout"`
		RequestInterval time.Duration `yaml:"request_interval"`
	} `yaml:"source"`
	Output struct {
		Dir   string `yaml:"dir"`
		XLSX  *bool  `yaml:"xlsx"`
		Chart *bool  `yaml:"chart"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Watchlist []WatchItem `yaml:"watchlist"`
	Proxy     string      `yaml:"proxy"`
	Log       struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("INSTAGRAPH_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Source.Timeout = d
		}
	}

	// Defaults
	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = collector.DefaultBaseURL
	}
	if cfg.Source.UserAgent == "" {
		cfg.Source.UserAgent = collector.DefaultUserAgent
	}
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = collector.DefaultTimeout
	}
	if cfg.Source.RequestInterval == 0 {
		cfg.Source.RequestInterval = time.Second
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "out"
	}
	if cfg.Output.XLSX == nil {
		cfg.Output.XLSX = boolPtr(true)
	}
	if cfg.Output.Chart == nil {
		cfg.Output.Chart = boolPtr(true)
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/instagraph.db"
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 30 17 * * 1-5"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	for i := range cfg.Watchlist {
		cfg.Watchlist[i].Symbol = strings.ToUpper(strings.TrimSpace(cfg.Watchlist[i].Symbol))
		cfg.Watchlist[i].Exchange = strings.ToUpper(strings.TrimSpace(cfg.Watchlist[i].Exchange))
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Source.BaseURL, "http://") && !strings.HasPrefix(c.Source.BaseURL, "https://") {
		return fmt.Errorf("source.base_url must be an http(s) URL, got %q", c.Source.BaseURL)
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	if c.Source.RequestInterval < 0 {
		return fmt.Errorf("source.request_interval must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	for i, w := range c.Watchlist {
		if w.Symbol == "" {
			return fmt.Errorf("watchlist[%d].symbol is required", i)
		}
		if _, err := collector.ResolveExchange(w.Exchange); err != nil {
			return fmt.Errorf("watchlist[%d]: %w", i, err)
		}
	}
	return nil
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// WriteXLSX reports whether workbooks are written.
func (c *Config) WriteXLSX() bool { return c.Output.XLSX == nil || *c.Output.XLSX }

// WriteChart reports whether chart images are written.
func (c *Config) WriteChart() bool { return c.Output.Chart == nil || *c.Output.Chart }

func boolPtr(b bool) *bool { return &b }
