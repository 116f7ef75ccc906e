package config

import (
	"testing"
	"time"
)

func setMockBackends(t *testing.T) {
	t.Setenv("TRANSCRIPTION_BACKEND", "mock")
	t.Setenv("RESPONDER_BACKEND", "mock")
	t.Setenv("SPEECH_BACKEND", "mock")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setMockBackends(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("expected default port 5000, got %s", cfg.Port)
	}
	if cfg.CameraTimeout != 5*time.Second {
		t.Errorf("expected 5s camera timeout, got %s", cfg.CameraTimeout)
	}
	if cfg.ClassifierMaxTokens != 512 {
		t.Errorf("expected 512 max tokens, got %d", cfg.ClassifierMaxTokens)
	}
	if cfg.AudioExtension != "mp3" {
		t.Errorf("expected mp3 extension, got %s", cfg.AudioExtension)
	}
	if len(cfg.ControlPhrases) != 1 || cfg.ControlPhrases[0] != "stop recording" {
		t.Errorf("unexpected control phrases %v", cfg.ControlPhrases)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive should be disabled without Azure credentials")
	}
	if cfg.AuthEnabled() {
		t.Error("auth should be disabled without JWT_SECRET")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setMockBackends(t)
	t.Setenv("PORT", "8080")
	t.Setenv("CAMERA_TIMEOUT", "2s")
	t.Setenv("AUDIO_EXTENSION", ".wav")
	t.Setenv("CONTROL_PHRASES", "stop recording, , end of message")
	t.Setenv("PUBLIC_BASE_URL", "https://vox.example.com/")
	t.Setenv("DEVICE_CREDENTIALS", "CAM001:secret1,broken,CAM002:secret2")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("unexpected address %s", cfg.ServerAddress())
	}
	if cfg.CameraTimeout != 2*time.Second {
		t.Errorf("expected 2s, got %s", cfg.CameraTimeout)
	}
	if cfg.AudioExtension != "wav" {
		t.Errorf("expected wav, got %s", cfg.AudioExtension)
	}
	if len(cfg.ControlPhrases) != 2 || cfg.ControlPhrases[1] != "end of message" {
		t.Errorf("unexpected control phrases %v", cfg.ControlPhrases)
	}
	if cfg.PublicBaseURL != "https://vox.example.com" {
		t.Errorf("trailing slash should be trimmed, got %s", cfg.PublicBaseURL)
	}
	if len(cfg.DeviceCredentials) != 2 || cfg.DeviceCredentials["CAM002"] != "secret2" {
		t.Errorf("unexpected credentials %v", cfg.DeviceCredentials)
	}
}

func TestLoadFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"invalid port", map[string]string{"PORT": "99999"}},
		{"openai transcription without key", map[string]string{"TRANSCRIPTION_BACKEND": "openai", "OPENAI_API_KEY": ""}},
		{"gemini without key", map[string]string{"RESPONDER_BACKEND": "gemini", "GEMINI_API_KEY": ""}},
		{"elevenlabs without key", map[string]string{"SPEECH_BACKEND": "elevenlabs", "ELEVEN_LABS_API_KEY": ""}},
		{"unknown speech backend", map[string]string{"SPEECH_BACKEND": "espeak"}},
		{"zero concurrency", map[string]string{"MAX_CONCURRENT_REQUESTS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setMockBackends(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadFromEnv(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFromEnv_RemoteResponderSkipsModelKey(t *testing.T) {
	setMockBackends(t)
	t.Setenv("RESPONDER_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("RESPONDER_URL", "http://localhost:5001/")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("remote responder should not need a local model key: %v", err)
	}
	if cfg.ResponderURL != "http://localhost:5001" {
		t.Errorf("unexpected responder url %s", cfg.ResponderURL)
	}
}
