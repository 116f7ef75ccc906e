package llm

import (
	"context"
	"encoding/base64"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAIVision implements VisionModel with the chat completions API
type OpenAIVision struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.VisionModel = (*OpenAIVision)(nil)

// NewOpenAIVision creates a chat/vision model. An empty model uses gpt-4o.
func NewOpenAIVision(client openai.Client, model string, logger *zap.Logger) *OpenAIVision {
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default model", zap.String("model", model))
	}
	return &OpenAIVision{client: client, model: model, logger: logger}
}

// Generate sends a single user turn, attaching the image as a data URL
func (o *OpenAIVision) Generate(ctx context.Context, prompt repositories.Prompt) (string, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt.Text),
	}
	if prompt.Image != nil {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: DataURL(prompt.Image.MIMEType, prompt.Image.Data),
		}))
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
	})
	if err != nil {
		return "", apperrors.FromCall("chat completion failed", err, apperrors.KindModel)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewModelError("chat completion returned no choices", nil)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", apperrors.NewModelError("chat completion returned empty content", nil)
	}

	o.logger.Debug("Chat completion received",
		zap.String("model", o.model),
		zap.Bool("withImage", prompt.Image != nil),
		zap.Int("replyLength", len(text)))

	return text, nil
}

// DataURL encodes data as a base64 data URL
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
