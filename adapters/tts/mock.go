package tts

import (
	"bytes"
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

// silentFrame is a single MPEG-1 Layer III frame header followed by padding
var silentFrame = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 413)...)

// MockTextToSpeech writes a short silent mp3 for every input
type MockTextToSpeech struct {
	logger *zap.Logger
}

// NewMockTextToSpeech creates a new mock text-to-speech service
func NewMockTextToSpeech(logger *zap.Logger) repositories.TextToSpeech {
	return &MockTextToSpeech{logger: logger}
}

// Synthesize implements repositories.TextToSpeech
func (m *MockTextToSpeech) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("text cannot be empty", nil)
	}
	m.logger.Info("Mock speech synthesis", zap.Int("textLength", len(text)))
	return io.NopCloser(bytes.NewReader(silentFrame)), nil
}
