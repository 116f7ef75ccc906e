package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/adapters/camera"
	"github.com/SalinCodes/VoxVision/adapters/classifier"
	"github.com/SalinCodes/VoxVision/adapters/llm"
	"github.com/SalinCodes/VoxVision/adapters/storage"
	"github.com/SalinCodes/VoxVision/adapters/stt"
	"github.com/SalinCodes/VoxVision/adapters/tts"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/config"
)

func newOpenAIClient(cfg *config.Config, httpClient *http.Client) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithHTTPClient(httpClient),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return openai.NewClient(opts...)
}

// newSpeechToText returns the transcription backend and a closer for it
func newSpeechToText(ctx context.Context, cfg *config.Config, client openai.Client, logger *zap.Logger) (repositories.SpeechToText, io.Closer, error) {
	switch cfg.TranscriptionBackend {
	case config.BackendOpenAI:
		return stt.NewOpenAISpeechToText(client, "", logger), nopCloser{}, nil
	case config.BackendGoogle:
		google, err := stt.NewGoogleSpeechToText(ctx, logger)
		if err != nil {
			return nil, nil, err
		}
		return google, google, nil
	case config.BackendMock:
		return stt.NewMockSpeechToText(logger), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported transcription backend %q", cfg.TranscriptionBackend)
	}
}

func newVisionModel(ctx context.Context, cfg *config.Config, client openai.Client, logger *zap.Logger) (repositories.VisionModel, error) {
	switch cfg.ResponderBackend {
	case config.BackendOpenAI:
		return llm.NewOpenAIVision(client, cfg.ResponderModel, logger), nil
	case config.BackendGemini:
		return llm.NewGeminiVision(ctx, llm.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.ResponderModel,
		}, logger)
	case config.BackendMock:
		return llm.NewMockVision(logger), nil
	default:
		return nil, fmt.Errorf("unsupported responder backend %q", cfg.ResponderBackend)
	}
}

func newTextToSpeech(cfg *config.Config, client openai.Client, httpClient *http.Client, logger *zap.Logger) (repositories.TextToSpeech, error) {
	switch cfg.SpeechBackend {
	case config.BackendOpenAI:
		return tts.NewOpenAITTS(client, cfg.TTSModel, cfg.TTSVoice, logger), nil
	case config.BackendElevenLabs:
		elevenLabsConfig := tts.NewElevenLabsConfigFromEnv()
		elevenLabsConfig.APIKey = cfg.ElevenLabsAPIKey
		return tts.NewElevenLabsTTS(elevenLabsConfig, httpClient, logger)
	case config.BackendMock:
		return tts.NewMockTextToSpeech(logger), nil
	default:
		return nil, fmt.Errorf("unsupported speech backend %q", cfg.SpeechBackend)
	}
}

func newClassifier(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) (repositories.IntentClassifier, error) {
	if cfg.ClassifierURL != "" {
		logger.Info("Using remote intent classifier", zap.String("url", cfg.ClassifierURL))
		return classifier.NewRemoteClassifier(cfg.ClassifierURL, cfg.ClassifierMaxTokens, cfg.ClassifierTimeout, httpClient, logger), nil
	}
	return classifier.LoadLinearClassifier(cfg.ClassifierWeights, cfg.ClassifierMaxTokens, logger)
}

// newCaptureStrategies builds the ordered chain: live camera, then the cached frame
func newCaptureStrategies(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) ([]repositories.CaptureStrategy, error) {
	live, err := camera.NewHTTPCamera(camera.HTTPCameraConfig{
		URL:     cfg.CameraURL,
		Dir:     cfg.ImageDir,
		Timeout: cfg.CameraTimeout,
	}, httpClient, logger)
	if err != nil {
		return nil, err
	}

	strategies := []repositories.CaptureStrategy{live}
	if cfg.FallbackImage != "" {
		strategies = append(strategies, camera.NewCachedImage(cfg.ImageDir, cfg.FallbackImage, logger))
	}
	return strategies, nil
}

func newImageArchive(cfg *config.Config, logger *zap.Logger) (repositories.ImageArchive, error) {
	if !cfg.ArchiveEnabled() {
		return nil, nil
	}
	archive, err := storage.NewBlobArchive(cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.AzureStorageContainer, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Archiving captured frames", zap.String("container", cfg.AzureStorageContainer))
	return archive, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
