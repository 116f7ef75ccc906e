package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
)

// GeminiConfig holds configuration for the Gemini vision adapter
type GeminiConfig struct {
	APIKey          string  // Required
	Model           string  // Optional: defaults to gemini-2.0-flash
	Temperature     float32 // Optional: between 0 and 1
	MaxOutputTokens int     // Optional
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}

	if config.Temperature != 0 && (config.Temperature < 0 || config.Temperature > 1) {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", config.Temperature)
	}

	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", config.MaxOutputTokens)
	}

	return nil
}

// GeminiVision implements VisionModel using Google's Gemini API
type GeminiVision struct {
	client          *genai.Client
	logger          *zap.Logger
	model           string
	temperature     float32
	maxOutputTokens int
}

var _ repositories.VisionModel = (*GeminiVision)(nil)

// NewGeminiVision creates a new Gemini client for single-turn prompts
func NewGeminiVision(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiVision, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
		logger.Info("Using default model", zap.String("model", model))
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
		logger.Info("Using default temperature", zap.Float32("temperature", temperature))
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxTokens
		logger.Info("Using default maxOutputTokens", zap.Int("maxOutputTokens", maxOutputTokens))
	}

	return &GeminiVision{
		client:          client,
		logger:          logger,
		model:           model,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
	}, nil
}

// Generate sends the prompt with the optional image as an inline part
func (g *GeminiVision) Generate(ctx context.Context, prompt repositories.Prompt) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt.Text)}
	if prompt.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(prompt.Image.Data, prompt.Image.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: int32(g.maxOutputTokens),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", apperrors.FromCall("gemini generate content failed", err, apperrors.KindModel)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil || len(response.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.NewModelError("gemini returned no candidates", nil)
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", apperrors.NewModelError("gemini returned empty text", nil)
	}

	g.logger.Debug("Gemini reply received",
		zap.String("model", g.model),
		zap.Bool("withImage", prompt.Image != nil),
		zap.Int("replyLength", len(text)))

	return text, nil
}
