package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	client *speech.Client
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates the Cloud Speech client using application default credentials
func NewGoogleSpeechToText(ctx context.Context, logger *zap.Logger) (*GoogleSpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleSpeechToText{client: client, logger: logger}, nil
}

// TranscribeAudio converts audio data to text using a synchronous Recognize call
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", apperrors.NewValidationError("audio payload is empty", nil)
	}

	encoding, err := getAudioEncoding(config.Encoding)
	if err != nil {
		return "", apperrors.NewValidationError("unsupported audio encoding", err)
	}

	recognitionConfig := &speechpb.RecognitionConfig{
		Encoding:     encoding,
		LanguageCode: googleLanguageCode(config.Language),
	}
	// WAV headers carry the sample rate; only raw encodings need it spelled out
	if config.SampleRate > 0 {
		recognitionConfig.SampleRateHertz = int32(config.SampleRate)
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: recognitionConfig,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		return "", apperrors.FromCall("recognize request failed", err, apperrors.KindModel)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			// Take the best alternative
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}

	transcript := strings.TrimSpace(strings.Join(parts, " "))
	if transcript == "" {
		return "", apperrors.NewValidationError("no speech detected in audio", nil)
	}

	g.logger.Debug("Google transcription completed", zap.Int("results", len(resp.Results)))
	return transcript, nil
}

// Close releases the underlying gRPC connection
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// googleLanguageCode expands bare language codes to the BCP-47 tags Cloud Speech expects
func googleLanguageCode(language string) string {
	switch strings.ToLower(language) {
	case "", "en":
		return "en-US"
	case "id":
		return "id-ID"
	case "ne":
		return "ne-NP"
	default:
		return language
	}
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "", "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB, nil
	case "OGG_OPUS", "OGG":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE, nil
	case "WEBM_OPUS", "WEBM":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	case "MP3":
		return speechpb.RecognitionConfig_MP3, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
