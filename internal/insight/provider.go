package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"StockLens/internal/config"
	"StockLens/internal/model"
)

// ErrMissingAPIKey is returned by a provider that has no credential.
var ErrMissingAPIKey = errors.New("missing insight provider api key")

const (
	systemPrompt = "You are a financial analyst. Given this stock’s daily price data for the year, provide a concise analysis: - General trend - Key highs/lows - Notable price movements - Possible causes (generic). Output 4–5 sentences max in simple English."

	noInsightsText = "No insights generated."
)

// Provider turns a price series into a short prose analysis.
type Provider interface {
	Name() string
	// KeyName is the environment variable that carries the credential.
	KeyName() string
	Generate(ctx context.Context, points []model.ExportPoint) (string, error)
}

func userPrompt(points []model.ExportPoint) (string, error) {
	data, err := json.Marshal(points)
	if err != nil {
		return "", fmt.Errorf("encode points: %w", err)
	}
	return "Here is the stock data as an array of {date, price}:\n" + string(data), nil
}

// NewProvider builds the provider selected in cfg.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	timeout := time.Duration(cfg.Insight.TimeoutSeconds) * time.Second
	switch cfg.Insight.Provider {
	case config.ProviderClaude:
		return NewClaudeProvider(cfg.Insight.AnthropicKey, cfg.Insight.Model), nil
	case config.ProviderGemini:
		return NewGeminiProvider(ctx, cfg.Insight.GeminiKey, cfg.Insight.Model)
	case config.ProviderOpenRouter, "":
		p := NewOpenRouterProvider(cfg.Insight.OpenRouterKey, cfg.Insight.Model, timeout, cfg.Proxy)
		if cfg.Insight.Referer != "" {
			p.Referer = cfg.Insight.Referer
		}
		p.Title = cfg.Insight.Title
		return p, nil
	default:
		return nil, fmt.Errorf("unknown insight provider %q", cfg.Insight.Provider)
	}
}

type attributionKey struct{}

type attribution struct {
	referer string
	title   string
}

// WithAttribution carries the caller's origin and title to providers that
// forward them upstream. Empty values keep the provider defaults.
func WithAttribution(ctx context.Context, referer, title string) context.Context {
	return context.WithValue(ctx, attributionKey{}, attribution{referer: referer, title: title})
}

func attributionFrom(ctx context.Context) attribution {
	a, _ := ctx.Value(attributionKey{}).(attribution)
	return a
}
