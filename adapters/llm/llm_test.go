package llm

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/SalinCodes/VoxVision/domain/repositories"
)

func TestValidateGeminiConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  GeminiConfig
		wantErr bool
	}{
		{"missing key", GeminiConfig{}, true},
		{"valid", GeminiConfig{APIKey: "k"}, false},
		{"temperature too high", GeminiConfig{APIKey: "k", Temperature: 1.5}, true},
		{"negative tokens", GeminiConfig{APIKey: "k", MaxOutputTokens: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeminiConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGeminiConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	data := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

	url := DataURL("image/jpeg", data)
	prefix := "data:image/jpeg;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("unexpected prefix in %q", url)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(decoded) != string(data) {
		t.Error("decoded bytes differ from the source image")
	}

	if !strings.HasPrefix(DataURL("", data), prefix) {
		t.Error("empty mime type should default to image/jpeg")
	}
}

func TestMockVisionRecordsPrompts(t *testing.T) {
	mock := NewMockVision(zaptest.NewLogger(t))
	ctx := context.Background()

	if _, err := mock.Generate(ctx, repositories.Prompt{Text: "tell me a joke"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reply, err := mock.Generate(ctx, repositories.Prompt{
		Text:  "what is this",
		Image: &repositories.ImagePart{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "3 bytes") {
		t.Errorf("unexpected reply %q", reply)
	}

	prompts := mock.Prompts()
	if len(prompts) != 2 || prompts[0].Image != nil || prompts[1].Image == nil {
		t.Errorf("unexpected recorded prompts %+v", prompts)
	}
}
