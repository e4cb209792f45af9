package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"StockLens/internal/model"
)

const claudeModel = "claude-3-5-haiku-latest"

// ClaudeProvider asks an Anthropic model for the analysis.
type ClaudeProvider struct {
	model     string
	maxTokens int64
	send      func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

func NewClaudeProvider(apiKey, model string) *ClaudeProvider {
	if model == "" {
		model = claudeModel
	}
	p := &ClaudeProvider{model: model, maxTokens: 400}
	if apiKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(apiKey))
		p.send = func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
			return client.Messages.New(ctx, params)
		}
	}
	return p
}

func (p *ClaudeProvider) Name() string    { return "claude" }
func (p *ClaudeProvider) KeyName() string { return "ANTHROPIC_API_KEY" }

func (p *ClaudeProvider) Generate(ctx context.Context, points []model.ExportPoint) (string, error) {
	if p.send == nil {
		return "", ErrMissingAPIKey
	}
	user, err := userPrompt(tail(points, DefaultLimit))
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   p.maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Temperature: anthropic.Float(0.4),
	}
	resp, err := p.send(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude request: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return orNoInsights(sb.String()), nil
}
