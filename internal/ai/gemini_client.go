package ai

import (
	"MemeDubber/internal/config"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient извлекает текст мема через Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	cfg    config.GeminiConfig
	logger *zap.SugaredLogger
}

func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig, logger *zap.SugaredLogger) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: empty API key (set GOOGLE_API_KEY in .env/ENV or pass via flag)")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client, cfg: cfg, logger: logger}, nil
}

// ExtractCaption отправляет PNG и промпт аналитика мемов, ожидает JSON {language_code, text}.
func (c *GeminiClient) ExtractCaption(ctx context.Context, png []byte) (Extraction, error) {
	gcfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(systemInstruction)}},
		Temperature:       genai.Ptr(c.cfg.Temperature),
		ResponseMIMEType:  "application/json",
	}
	if c.cfg.ThinkingBudget > 0 {
		gcfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(c.cfg.ThinkingBudget)}
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromBytes(png, "image/png"),
			genai.NewPartFromText(extractionPrompt),
		},
	}}

	started := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, gcfg)
	if err != nil {
		return Extraction{}, fmt.Errorf("gemini: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Extraction{}, errors.New("gemini: no candidates in response")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	if c.logger != nil {
		c.logger.Infow("Gemini extraction completed", "model", c.cfg.Model, "took", time.Since(started).String(), "bytes", sb.Len())
	}

	return ParseExtraction(sb.String())
}
