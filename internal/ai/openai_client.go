package ai

import (
	"MemeDubber/internal/config"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

// OpenAIClient извлекает текст мема через OpenAI: картинка уходит как data URL.
// Альтернатива GeminiClient за переключателем EXTRACTOR_SERVICE.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewOpenAIClient(client *openai.Client, cfg config.OpenAIConfig, logger *zap.SugaredLogger) *OpenAIClient {
	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	return &OpenAIClient{client: client, model: model, logger: logger}
}

func (c *OpenAIClient) ExtractCaption(ctx context.Context, png []byte) (Extraction, error) {
	imageURL := fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png))

	started := time.Now()
	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:        shared.ResponsesModel(c.model),
		Instructions: openai.String(systemInstruction),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						{
							OfInputText: &responses.ResponseInputTextParam{
								Text: extractionPrompt,
							},
						},
						{
							OfInputImage: &responses.ResponseInputImageParam{
								Detail:   responses.ResponseInputImageDetailAuto,
								ImageURL: openai.String(imageURL),
							},
						},
					},
					responses.EasyInputMessageRoleUser,
				),
			},
		},
	})
	if err != nil {
		return Extraction{}, fmt.Errorf("openai: extract caption: %w", err)
	}
	if c.logger != nil {
		c.logger.Infow("OpenAI extraction completed", "model", c.model, "took", time.Since(started).String())
	}

	return ParseExtraction(resp.OutputText())
}
