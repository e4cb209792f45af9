package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Provider names accepted by insight.provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderClaude     = "claude"
	ProviderGemini     = "gemini"
)

// Source kinds accepted by source.kind.
const (
	SourceNone  = ""
	SourceFile  = "file"
	SourceURL   = "url"
	SourceYahoo = "yahoo"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level      string `yaml:"level" toml:"level"`
		Format     string `yaml:"format" toml:"format"`
		File       string `yaml:"file" toml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
	} `yaml:"log" toml:"log"`
	HTTP struct {
		Addr          string `yaml:"addr" toml:"addr"`
		MaxUploadMB   int64  `yaml:"max_upload_mb" toml:"max_upload_mb"`
		AllowedOrigin string `yaml:"allowed_origin" toml:"allowed_origin"`
	} `yaml:"http" toml:"http"`
	Source struct {
		Kind   string `yaml:"kind" toml:"kind"`
		Path   string `yaml:"path" toml:"path"`
		URL    string `yaml:"url" toml:"url"`
		Token  string `yaml:"token" toml:"token"`
		Symbol string `yaml:"symbol" toml:"symbol"`
		Range  string `yaml:"range" toml:"range"`
	} `yaml:"source" toml:"source"`
	Insight struct {
		Provider       string  `yaml:"provider" toml:"provider"`
		Model          string  `yaml:"model" toml:"model"`
		OpenRouterKey  string  `yaml:"openrouter_api_key" toml:"openrouter_api_key"`
		AnthropicKey   string  `yaml:"anthropic_api_key" toml:"anthropic_api_key"`
		GeminiKey      string  `yaml:"gemini_api_key" toml:"gemini_api_key"`
		Referer        string  `yaml:"referer" toml:"referer"`
		Title          string  `yaml:"title" toml:"title"`
		MaxPoints      int     `yaml:"max_points" toml:"max_points"`
		CacheSize      int     `yaml:"cache_size" toml:"cache_size"`
		RatePerMinute  float64 `yaml:"rate_per_minute" toml:"rate_per_minute"`
		TimeoutSeconds int     `yaml:"timeout_seconds" toml:"timeout_seconds"`
	} `yaml:"insight" toml:"insight"`
	Telegram struct {
		BotToken string `yaml:"bot_token" toml:"bot_token"`
		ChatID   string `yaml:"chat_id" toml:"chat_id"`
	} `yaml:"telegram" toml:"telegram"`
	Schedule struct {
		ReloadCron string `yaml:"reload_cron" toml:"reload_cron"`
		ReportCron string `yaml:"report_cron" toml:"report_cron"`
	} `yaml:"schedule" toml:"schedule"`
	Watch struct {
		File       string `yaml:"file" toml:"file"`
		DebounceMS int    `yaml:"debounce_ms" toml:"debounce_ms"`
	} `yaml:"watch" toml:"watch"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" toml:"sqlite_path"`
	} `yaml:"database" toml:"database"`
	Proxy string `yaml:"proxy" toml:"proxy"`
}

// Load reads config from a YAML or TOML file (chosen by extension), then
// applies environment variable overrides and defaults. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"OPENROUTER_API_KEY", &c.Insight.OpenRouterKey},
		{"ANTHROPIC_API_KEY", &c.Insight.AnthropicKey},
		{"GEMINI_API_KEY", &c.Insight.GeminiKey},
		{"INSIGHT_PROVIDER", &c.Insight.Provider},
		{"TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &c.Telegram.ChatID},
		{"HTTP_ADDR", &c.HTTP.Addr},
		{"SQLITE_PATH", &c.Database.SQLitePath},
		{"HTTPS_PROXY", &c.Proxy},
		{"WATCH_FILE", &c.Watch.File},
		{"RELOAD_CRON", &c.Schedule.ReloadCron},
		{"LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.MaxUploadMB == 0 {
		c.HTTP.MaxUploadMB = 10
	}
	if c.Source.Range == "" {
		c.Source.Range = "1y"
	}
	if c.Insight.Provider == "" {
		c.Insight.Provider = ProviderOpenRouter
	}
	if c.Insight.Title == "" {
		c.Insight.Title = "AI Stock Visualizer"
	}
	if c.Insight.MaxPoints == 0 {
		c.Insight.MaxPoints = 366
	}
	if c.Insight.CacheSize == 0 {
		c.Insight.CacheSize = 64
	}
	if c.Insight.RatePerMinute == 0 {
		c.Insight.RatePerMinute = 6
	}
	if c.Insight.TimeoutSeconds == 0 {
		c.Insight.TimeoutSeconds = 60
	}
	if c.Watch.DebounceMS == 0 {
		c.Watch.DebounceMS = 500
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Insight.Provider {
	case ProviderOpenRouter, ProviderClaude, ProviderGemini:
	default:
		return fmt.Errorf("insight.provider %q is not one of openrouter, claude, gemini", c.Insight.Provider)
	}
	if c.Insight.MaxPoints < 0 {
		return fmt.Errorf("insight.max_points must not be negative")
	}
	if c.Insight.RatePerMinute < 0 {
		return fmt.Errorf("insight.rate_per_minute must not be negative")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	switch c.Source.Kind {
	case SourceNone:
	case SourceFile:
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for source.kind=file")
		}
	case SourceURL:
		if c.Source.URL == "" {
			return fmt.Errorf("source.url is required for source.kind=url")
		}
	case SourceYahoo:
		if c.Source.Symbol == "" {
			return fmt.Errorf("source.symbol is required for source.kind=yahoo")
		}
	default:
		return fmt.Errorf("source.kind %q is not one of file, url, yahoo", c.Source.Kind)
	}
	if c.Schedule.ReloadCron != "" && c.Source.Kind == SourceNone {
		return fmt.Errorf("schedule.reload_cron needs a configured source")
	}
	return nil
}

// TelegramEnabled reports whether the bot should be started.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
