package websocket

import (
	"errors"
	"testing"

	"github.com/SalinCodes/VoxVision/domain"
)

func TestMessageValidator_ValidateMessage(t *testing.T) {
	validator := NewMessageValidator()

	tests := []struct {
		name    string
		message string
		wantErr error
	}{
		{
			name:    "valid process_audio",
			message: `{"type": "process_audio", "audio_data": "UklGRg=="}`,
		},
		{
			name:    "valid process_audio with encoding",
			message: `{"type": "process_audio", "audio_data": "UklGRg==", "encoding": "WEBM"}`,
		},
		{
			name:    "missing audio",
			message: `{"type": "process_audio"}`,
			wantErr: ErrMissingAudio,
		},
		{
			name:    "unknown encoding",
			message: `{"type": "process_audio", "audio_data": "UklGRg==", "encoding": "aiff"}`,
			wantErr: ErrInvalidEncoding,
		},
		{
			name:    "ping",
			message: `{"type": "ping", "data": "42"}`,
		},
		{
			name:    "unsupported type",
			message: `{"type": "listening_start"}`,
			wantErr: ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.ValidateMessage([]byte(tt.message))
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := validator.ValidateMessage([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestMessageValidator_ReturnsTypedMessages(t *testing.T) {
	validator := NewMessageValidator()

	parsed, err := validator.ValidateMessage([]byte(`{"type":"process_audio","audio_data":"AAEC"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg, ok := parsed.(*domain.ProcessAudioMessage)
	if !ok || msg.AudioData != "AAEC" {
		t.Errorf("unexpected message %#v", parsed)
	}

	parsed, _ = validator.ValidateMessage([]byte(`{"type":"ping","data":"x"}`))
	if ping, ok := parsed.(*PingMessage); !ok || ping.Data != "x" {
		t.Errorf("unexpected message %#v", parsed)
	}
}

func TestRejectionText(t *testing.T) {
	if got := rejectionText(ErrMissingAudio); got != "No audio data received" {
		t.Errorf("unexpected text %q", got)
	}
	if got := rejectionText(ErrUnsupportedType); got != errTextInvalidMessage {
		t.Errorf("unexpected text %q", got)
	}
}

func TestCreatePongMessage(t *testing.T) {
	pong := CreatePongMessage("abc")
	if pong.Type != domain.EventPong || pong.Data != "abc" || pong.Timestamp == "" {
		t.Errorf("unexpected pong %+v", pong)
	}
}
