package stt

import (
	"context"

	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

// MockSpeechToText is a placeholder implementation for speech recognition
type MockSpeechToText struct {
	logger *zap.Logger
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger) repositories.SpeechToText {
	return &MockSpeechToText{
		logger: logger,
	}
}

// TranscribeAudio implements repositories.SpeechToText
func (s *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	s.logger.Info("Processing speech-to-text",
		zap.Int("audioSize", len(audioData)),
		zap.String("encoding", config.Encoding),
		zap.String("language", config.Language))

	if len(audioData) == 0 {
		return "", apperrors.NewValidationError("audio payload is empty", nil)
	}

	// Mock transcription based on audio size
	switch {
	case len(audioData) > 10000:
		return "What is in front of me right now? Stop recording", nil
	case len(audioData) > 5000:
		return "What is this?", nil
	case len(audioData) > 1000:
		return "Tell me a joke.", nil
	default:
		return "Hello there!", nil
	}
}
