package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/SalinCodes/VoxVision/adapters/storage"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

func TestSpeechService_Synthesize(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := NewSpeechService(&fakeTTS{data: []byte("mp3")}, store, ".mp3", zaptest.NewLogger(t))

	artifact, err := svc.Synthesize(context.Background(), "Hello", "https://abc.ngrok.io/")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if !regexp.MustCompile(`^speech_[0-9a-f-]{36}\.mp3$`).MatchString(artifact.Filename) {
		t.Errorf("unexpected filename %s", artifact.Filename)
	}
	if artifact.URL != "https://abc.ngrok.io/static/audio/"+artifact.Filename {
		t.Errorf("unexpected url %s", artifact.URL)
	}
	if artifact.Size != 3 {
		t.Errorf("unexpected size %d", artifact.Size)
	}
}

func TestSpeechService_Failures(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := zaptest.NewLogger(t)

	empty := NewSpeechService(&fakeTTS{}, store, "mp3", logger)
	if _, err := empty.Synthesize(context.Background(), "Hello", "http://localhost:5000"); !apperrors.IsKind(err, apperrors.KindArtifact) {
		t.Errorf("empty audio should be an artifact error, got %v", err)
	}

	broken := NewSpeechService(&fakeTTS{err: errors.New("quota exceeded")}, store, "mp3", logger)
	if _, err := broken.Synthesize(context.Background(), "Hello", "http://localhost:5000"); !apperrors.IsKind(err, apperrors.KindModel) {
		t.Errorf("backend failure should be a model error, got %v", err)
	}
}
