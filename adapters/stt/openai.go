package stt

import (
	"bytes"
	"context"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

const defaultWhisperModel = "whisper-1"

// OpenAISpeechToText implements SpeechToText with the Whisper transcription API
type OpenAISpeechToText struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*OpenAISpeechToText)(nil)

// NewOpenAISpeechToText creates a Whisper transcriber. An empty model uses whisper-1.
func NewOpenAISpeechToText(client openai.Client, model string, logger *zap.Logger) *OpenAISpeechToText {
	if model == "" {
		model = defaultWhisperModel
		logger.Info("Using default transcription model", zap.String("model", model))
	}
	return &OpenAISpeechToText{
		client: client,
		model:  model,
		logger: logger,
	}
}

// TranscribeAudio uploads the recording and returns the transcript. No retries.
func (s *OpenAISpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", apperrors.NewValidationError("audio payload is empty", nil)
	}

	filename, contentType := uploadName(config.Encoding)
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audioData), filename, contentType),
		Model: openai.AudioModel(s.model),
	}
	if config.Language != "" {
		params.Language = openai.String(config.Language)
	}

	s.logger.Debug("Sending audio to transcription API",
		zap.Int("audioSize", len(audioData)),
		zap.String("filename", filename),
		zap.String("language", config.Language))

	resp, err := s.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", apperrors.FromCall("transcription request failed", err, apperrors.KindModel)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", apperrors.NewValidationError("no speech detected in audio", nil)
	}

	return text, nil
}

// uploadName picks a filename the API can infer the container format from
func uploadName(encoding string) (string, string) {
	switch strings.ToLower(encoding) {
	case "mp3", "mpeg":
		return "audio.mp3", "audio/mpeg"
	case "webm", "webm_opus":
		return "audio.webm", "audio/webm"
	case "ogg", "ogg_opus", "opus":
		return "audio.ogg", "audio/ogg"
	case "flac":
		return "audio.flac", "audio/flac"
	case "m4a", "mp4":
		return "audio.m4a", "audio/mp4"
	default:
		return "audio.wav", "audio/wav"
	}
}
