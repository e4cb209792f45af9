package insight

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"StockLens/internal/model"
)

const geminiModel = "gemini-2.0-flash"

type geminiGenerateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiProvider asks a Gemini model for the analysis.
type GeminiProvider struct {
	model    string
	generate geminiGenerateFunc
}

// NewGeminiProvider creates the client eagerly so a bad key configuration is
// reported at startup. An empty key yields a provider that always returns
// ErrMissingAPIKey.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if model == "" {
		model = geminiModel
	}
	p := &GeminiProvider{model: model}
	if apiKey == "" {
		return p, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	p.generate = client.Models.GenerateContent
	return p, nil
}

func (p *GeminiProvider) Name() string    { return "gemini" }
func (p *GeminiProvider) KeyName() string { return "GEMINI_API_KEY" }

func (p *GeminiProvider) Generate(ctx context.Context, points []model.ExportPoint) (string, error) {
	if p.generate == nil {
		return "", ErrMissingAPIKey
	}
	user, err := userPrompt(tail(points, DefaultLimit))
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.4),
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	resp, err := p.generate(ctx, p.model, []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}

	var sb strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				sb.WriteString(part.Text)
			}
		}
	}
	return orNoInsights(sb.String()), nil
}
