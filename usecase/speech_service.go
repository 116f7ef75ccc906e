package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

// AudioURLPrefix is the public path synthesized files are served under
const AudioURLPrefix = "/static/audio/"

// SpeechService turns reply text into a stored, publicly addressable audio file
type SpeechService struct {
	tts       repositories.TextToSpeech
	store     repositories.ArtifactStore
	extension string
	logger    *zap.Logger
}

// NewSpeechService creates a new speech service
func NewSpeechService(tts repositories.TextToSpeech, store repositories.ArtifactStore, extension string, logger *zap.Logger) *SpeechService {
	extension = strings.TrimPrefix(extension, ".")
	if extension == "" {
		extension = "mp3"
	}
	return &SpeechService{
		tts:       tts,
		store:     store,
		extension: extension,
		logger:    logger,
	}
}

// Synthesize writes speech_<uuid>.<ext> and returns where it can be fetched.
// A missing or empty file is an artifact error even if the backend succeeded.
func (s *SpeechService) Synthesize(ctx context.Context, text, baseURL string) (*entities.SpeechArtifact, error) {
	filename := fmt.Sprintf("speech_%s.%s", uuid.NewString(), s.extension)

	stream, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, apperrors.FromCall("speech synthesis failed", err, apperrors.KindModel)
	}
	defer stream.Close()

	path, err := s.store.Save(ctx, filename, stream)
	if err != nil {
		return nil, apperrors.FromCall("failed to store synthesized audio", err, apperrors.KindArtifact)
	}

	size, err := s.store.Stat(filename)
	if err != nil {
		return nil, apperrors.NewArtifactError("synthesized audio file is missing", err)
	}
	if size == 0 {
		return nil, apperrors.NewArtifactError("synthesized audio file is empty", nil)
	}

	s.logger.Info("Speech synthesized",
		zap.String("filename", filename),
		zap.Int64("size", size))

	return &entities.SpeechArtifact{
		Filename: filename,
		Path:     path,
		URL:      strings.TrimRight(baseURL, "/") + AudioURLPrefix + filename,
		Size:     size,
	}, nil
}
