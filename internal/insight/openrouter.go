package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockLens/internal/model"
)

const (
	openRouterURL   = "https://openrouter.ai/api/v1/chat/completions"
	openRouterModel = "openai/gpt-oss-20b:free"
)

// OpenRouterProvider calls an OpenAI-compatible chat completion endpoint.
type OpenRouterProvider struct {
	APIKey      string
	Model       string
	BaseURL     string
	Referer     string
	Title       string
	MaxTokens   int
	Temperature float64
	Client      *http.Client
}

func NewOpenRouterProvider(apiKey, model string, timeout time.Duration, proxyURL string) *OpenRouterProvider {
	if model == "" {
		model = openRouterModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &OpenRouterProvider{
		APIKey:      apiKey,
		Model:       model,
		BaseURL:     openRouterURL,
		Referer:     "https://lovable.app",
		Title:       "AI Stock Visualizer",
		MaxTokens:   220,
		Temperature: 0.4,
		Client:      &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (p *OpenRouterProvider) Name() string    { return "openrouter" }
func (p *OpenRouterProvider) KeyName() string { return "OPENROUTER_API_KEY" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *OpenRouterProvider) Generate(ctx context.Context, points []model.ExportPoint) (string, error) {
	if p.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	user, err := userPrompt(tail(points, DefaultLimit))
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(chatRequest{
		Model: p.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	referer, title := p.Referer, p.Title
	a := attributionFrom(ctx)
	if a.referer != "" {
		referer = a.referer
	}
	if a.title != "" {
		title = a.title
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", referer)
	req.Header.Set("X-Title", title)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("OpenRouter error: %s", strings.TrimSpace(string(body)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode openrouter response: %w", err)
	}
	if len(out.Choices) == 0 {
		return noInsightsText, nil
	}
	return orNoInsights(out.Choices[0].Message.Content), nil
}

func orNoInsights(text string) string {
	if text = strings.TrimSpace(text); text == "" {
		return noInsightsText
	}
	return text
}
