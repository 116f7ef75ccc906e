package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SalinCodes/VoxVision/domain"
)

// Validation failures of inbound messages
var (
	ErrMissingAudio    = errors.New("audio_data is required")
	ErrUnsupportedType = errors.New("unsupported message type")
	ErrInvalidEncoding = errors.New("unsupported audio encoding")
)

// User-facing texts for rejected messages
const (
	errTextNoAudio        = "No audio data received"
	errTextInvalidMessage = "Invalid message"
	errTextBusy           = "Server is shutting down, please try again later"
)

// BaseMessage carries the type shared by every message
type BaseMessage struct {
	Type string `json:"type"`
}

// PingMessage is an application level keepalive from the client
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage answers a PingMessage
type PongMessage struct {
	BaseMessage
	Data      string `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

var validEncodings = map[string]bool{
	"wav": true, "linear16": true, "mp3": true, "webm": true, "webm_opus": true,
	"ogg": true, "ogg_opus": true, "opus": true, "flac": true, "m4a": true,
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses an inbound text frame into its typed message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case domain.EventProcessAudio:
		var msg domain.ProcessAudioMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid process_audio message: %w", err)
		}
		if err := v.validateProcessAudio(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case domain.EventPing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, base.Type)
	}
}

func (v *MessageValidator) validateProcessAudio(msg *domain.ProcessAudioMessage) error {
	if strings.TrimSpace(msg.AudioData) == "" {
		return ErrMissingAudio
	}
	if msg.Encoding != "" && !validEncodings[strings.ToLower(msg.Encoding)] {
		return fmt.Errorf("%w: %q", ErrInvalidEncoding, msg.Encoding)
	}
	return nil
}

// CreateErrorMessage creates a standardized error event
func CreateErrorMessage(text string) *domain.ErrorMessage {
	return &domain.ErrorMessage{Type: domain.EventError, Error: text}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{Type: domain.EventPong},
		Data:        data,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// rejectionText maps a validation error to the text sent to the client
func rejectionText(err error) string {
	if errors.Is(err, ErrMissingAudio) {
		return errTextNoAudio
	}
	return errTextInvalidMessage
}
