package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted for the pluggable stages
const (
	BackendOpenAI     = "openai"
	BackendGoogle     = "google"
	BackendGemini     = "gemini"
	BackendElevenLabs = "elevenlabs"
	BackendMock       = "mock"
)

type Config struct {
	Host           string
	Port           string
	LogLevel       string
	LogDevelopment bool

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	GeminiAPIKey     string
	ElevenLabsAPIKey string
	SocksProxy       string

	TranscriptionBackend  string
	TranscriptionLanguage string
	TranscriptionTimeout  time.Duration

	ClassifierWeights   string
	ClassifierURL       string
	ClassifierMaxTokens int
	ClassifierTimeout   time.Duration

	CameraURL     string
	CameraTimeout time.Duration
	ImageDir      string
	FallbackImage string

	ResponderBackend string
	ResponderModel   string
	ResponderURL     string
	ResponderTimeout time.Duration

	SpeechBackend  string
	TTSModel       string
	TTSVoice       string
	AudioDir       string
	AudioExtension string
	SpeechTimeout  time.Duration

	PublicBaseURL  string
	NgrokAPIURL    string
	ControlPhrases []string

	PipelineTimeout       time.Duration
	MaxConcurrentRequests int

	JWTSecret         string
	DeviceCredentials map[string]string

	AzureStorageAccount   string
	AzureStorageKey       string
	AzureStorageContainer string
}

func (c *Config) ServerAddress() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

// ArchiveEnabled reports whether captured frames are uploaded to blob storage
func (c *Config) ArchiveEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

// AuthEnabled reports whether /ws requires a device token
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:           getEnvOrDefault("HOST", "0.0.0.0"),
		Port:           getEnvOrDefault("PORT", "5000"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogDevelopment: parseBoolOrDefault("LOG_DEVELOPMENT", false),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		ElevenLabsAPIKey: os.Getenv("ELEVEN_LABS_API_KEY"),
		SocksProxy:       os.Getenv("SOCKS_PROXY"),

		TranscriptionBackend:  strings.ToLower(getEnvOrDefault("TRANSCRIPTION_BACKEND", BackendOpenAI)),
		TranscriptionLanguage: getEnvOrDefault("TRANSCRIPTION_LANGUAGE", "en"),
		TranscriptionTimeout:  parseDurationOrDefault("TRANSCRIPTION_TIMEOUT", 30*time.Second),

		ClassifierWeights:   os.Getenv("CLASSIFIER_WEIGHTS"),
		ClassifierURL:       os.Getenv("CLASSIFIER_URL"),
		ClassifierMaxTokens: int(parseIntOrDefault("CLASSIFIER_MAX_TOKENS", 512)),
		ClassifierTimeout:   parseDurationOrDefault("CLASSIFIER_TIMEOUT", 5*time.Second),

		CameraURL:     getEnvOrDefault("CAMERA_URL", "http://172.20.10.2/capture"),
		CameraTimeout: parseDurationOrDefault("CAMERA_TIMEOUT", 5*time.Second),
		ImageDir:      getEnvOrDefault("IMAGE_DIR", "static/images"),
		FallbackImage: getEnvOrDefault("FALLBACK_IMAGE", "esp_32.jpg"),

		ResponderBackend: strings.ToLower(getEnvOrDefault("RESPONDER_BACKEND", BackendOpenAI)),
		ResponderModel:   os.Getenv("RESPONDER_MODEL"),
		ResponderURL:     strings.TrimRight(os.Getenv("RESPONDER_URL"), "/"),
		ResponderTimeout: parseDurationOrDefault("RESPONDER_TIMEOUT", 30*time.Second),

		SpeechBackend:  strings.ToLower(getEnvOrDefault("SPEECH_BACKEND", BackendOpenAI)),
		TTSModel:       getEnvOrDefault("TTS_MODEL", "tts-1"),
		TTSVoice:       getEnvOrDefault("TTS_VOICE", "echo"),
		AudioDir:       getEnvOrDefault("AUDIO_DIR", "static/audio"),
		AudioExtension: strings.TrimPrefix(getEnvOrDefault("AUDIO_EXTENSION", "mp3"), "."),
		SpeechTimeout:  parseDurationOrDefault("SPEECH_TIMEOUT", 30*time.Second),

		PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		NgrokAPIURL:    getEnvOrDefault("NGROK_API_URL", "http://localhost:4040/api/tunnels"),
		ControlPhrases: parseListOrDefault("CONTROL_PHRASES", []string{"stop recording"}),

		PipelineTimeout:       parseDurationOrDefault("PIPELINE_TIMEOUT", 2*time.Minute),
		MaxConcurrentRequests: int(parseIntOrDefault("MAX_CONCURRENT_REQUESTS", 8)),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		DeviceCredentials: parseCredentials(os.Getenv("DEVICE_CREDENTIALS")),

		AzureStorageAccount:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:       os.Getenv("AZURE_STORAGE_KEY"),
		AzureStorageContainer: getEnvOrDefault("AZURE_STORAGE_CONTAINER", "captures"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and that every selected backend has its credential
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}

	timeouts := map[string]time.Duration{
		"TRANSCRIPTION_TIMEOUT": c.TranscriptionTimeout,
		"CLASSIFIER_TIMEOUT":    c.ClassifierTimeout,
		"CAMERA_TIMEOUT":        c.CameraTimeout,
		"RESPONDER_TIMEOUT":     c.ResponderTimeout,
		"SPEECH_TIMEOUT":        c.SpeechTimeout,
		"PIPELINE_TIMEOUT":      c.PipelineTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0 (got %s)", name, d)
		}
	}

	if c.ClassifierMaxTokens <= 0 {
		return fmt.Errorf("CLASSIFIER_MAX_TOKENS must be > 0 (got %d)", c.ClassifierMaxTokens)
	}
	if c.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_REQUESTS must be > 0 (got %d)", c.MaxConcurrentRequests)
	}
	if c.AudioExtension == "" {
		return fmt.Errorf("AUDIO_EXTENSION must not be empty")
	}

	switch c.TranscriptionBackend {
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for transcription backend %q", c.TranscriptionBackend)
		}
	case BackendGoogle, BackendMock:
	default:
		return fmt.Errorf("unsupported TRANSCRIPTION_BACKEND: %q", c.TranscriptionBackend)
	}

	// A remote responder owns its own model credentials
	if c.ResponderURL == "" {
		switch c.ResponderBackend {
		case BackendOpenAI:
			if c.OpenAIAPIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is required for responder backend %q", c.ResponderBackend)
			}
		case BackendGemini:
			if c.GeminiAPIKey == "" {
				return fmt.Errorf("GEMINI_API_KEY is required for responder backend %q", c.ResponderBackend)
			}
		case BackendMock:
		default:
			return fmt.Errorf("unsupported RESPONDER_BACKEND: %q", c.ResponderBackend)
		}
	}

	switch c.SpeechBackend {
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for speech backend %q", c.SpeechBackend)
		}
	case BackendElevenLabs:
		if c.ElevenLabsAPIKey == "" {
			return fmt.Errorf("ELEVEN_LABS_API_KEY is required for speech backend %q", c.SpeechBackend)
		}
	case BackendMock:
	default:
		return fmt.Errorf("unsupported SPEECH_BACKEND: %q", c.SpeechBackend)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// parseListOrDefault reads a comma separated list, dropping empty items
func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// parseCredentials reads "serial:secret,serial:secret" pairs
func parseCredentials(value string) map[string]string {
	creds := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		serial, secret, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || serial == "" || secret == "" {
			continue
		}
		creds[serial] = secret
	}
	return creds
}
