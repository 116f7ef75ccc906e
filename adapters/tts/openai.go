package tts

import (
	"context"
	"io"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

// OpenAITTS implements TextToSpeech with the OpenAI speech endpoint
type OpenAITTS struct {
	client openai.Client
	model  string
	voice  string
	logger *zap.Logger
}

var _ repositories.TextToSpeech = (*OpenAITTS)(nil)

// NewOpenAITTS creates a speech synthesizer. Empty model and voice fall back to tts-1 and echo.
func NewOpenAITTS(client openai.Client, model, voice string, logger *zap.Logger) *OpenAITTS {
	if model == "" {
		model = string(openai.SpeechModelTTS1)
	}
	if voice == "" {
		voice = "echo"
	}
	return &OpenAITTS{client: client, model: model, voice: voice, logger: logger}
}

// Synthesize returns the mp3 stream for text. The caller must close it.
func (o *OpenAITTS) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("text cannot be empty", nil)
	}

	o.logger.Debug("Requesting speech",
		zap.String("model", o.model),
		zap.String("voice", o.voice),
		zap.Int("textLength", len(text)))

	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(o.model),
		Voice:          openai.AudioSpeechNewParamsVoice(o.voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, apperrors.FromCall("speech request failed", err, apperrors.KindModel)
	}

	return resp.Body, nil
}
