package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, ProviderOpenRouter, cfg.Insight.Provider)
	assert.Equal(t, 366, cfg.Insight.MaxPoints)
	assert.Equal(t, "AI Stock Visualizer", cfg.Insight.Title)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
http:
  addr: ":9000"
source:
  kind: yahoo
  symbol: AAPL
insight:
  provider: claude
schedule:
  reload_cron: "0 0 22 * * 1-5"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, SourceYahoo, cfg.Source.Kind)
	assert.Equal(t, "AAPL", cfg.Source.Symbol)
	assert.Equal(t, ProviderClaude, cfg.Insight.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[source]
kind = "file"
path = "prices.csv"

[insight]
provider = "gemini"
max_points = 100
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prices.csv", cfg.Source.Path)
	assert.Equal(t, 100, cfg.Insight.MaxPoints)
	assert.Equal(t, ProviderGemini, cfg.Insight.Provider)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "http:\n  addr: \":9000\"\n")
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, "sk-test", cfg.Insight.OpenRouterKey)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "http: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"unknown provider", func(c *Config) { c.Insight.Provider = "gpt" }, false},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x" }, false},
		{"file without path", func(c *Config) { c.Source.Kind = SourceFile }, false},
		{"url without url", func(c *Config) { c.Source.Kind = SourceURL }, false},
		{"unknown source", func(c *Config) { c.Source.Kind = "ftp" }, false},
		{"reload without source", func(c *Config) { c.Schedule.ReloadCron = "0 * * * * *" }, false},
		{"url source", func(c *Config) { c.Source.Kind = SourceURL; c.Source.URL = "http://x/y.csv" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}
