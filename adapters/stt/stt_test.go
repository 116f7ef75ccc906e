package stt

import (
	"context"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap/zaptest"

	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

var (
	_ repositories.SpeechToText = &GoogleSpeechToText{}
	_ repositories.SpeechToText = &OpenAISpeechToText{}
)

func TestGetAudioEncoding(t *testing.T) {
	tests := []struct {
		input   string
		want    speechpb.RecognitionConfig_AudioEncoding
		wantErr bool
	}{
		{"wav", speechpb.RecognitionConfig_LINEAR16, false},
		{"", speechpb.RecognitionConfig_LINEAR16, false},
		{"WEBM_OPUS", speechpb.RecognitionConfig_WEBM_OPUS, false},
		{"flac", speechpb.RecognitionConfig_FLAC, false},
		{"aiff", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, true},
	}

	for _, tt := range tests {
		got, err := getAudioEncoding(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("getAudioEncoding(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("getAudioEncoding(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGoogleLanguageCode(t *testing.T) {
	if got := googleLanguageCode("en"); got != "en-US" {
		t.Errorf("expected en-US, got %s", got)
	}
	if got := googleLanguageCode("fr-FR"); got != "fr-FR" {
		t.Errorf("full tags should pass through, got %s", got)
	}
}

func TestUploadName(t *testing.T) {
	name, contentType := uploadName("")
	if name != "audio.wav" || contentType != "audio/wav" {
		t.Errorf("default should be wav, got %s %s", name, contentType)
	}
	name, _ = uploadName("webm")
	if name != "audio.webm" {
		t.Errorf("expected audio.webm, got %s", name)
	}
}

func TestMockSpeechToText(t *testing.T) {
	stt := NewMockSpeechToText(zaptest.NewLogger(t))
	ctx := context.Background()

	text, err := stt.TranscribeAudio(ctx, make([]byte, 6000), repositories.AudioConfig{Language: "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "What is this?" {
		t.Errorf("unexpected transcript %q", text)
	}

	_, err = stt.TranscribeAudio(ctx, nil, repositories.AudioConfig{})
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("empty audio should be a validation error, got %v", err)
	}
}
