package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/adapters/devices"
	"github.com/SalinCodes/VoxVision/adapters/responder"
	"github.com/SalinCodes/VoxVision/adapters/storage"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/api"
	"github.com/SalinCodes/VoxVision/internal/auth"
	"github.com/SalinCodes/VoxVision/internal/config"
	"github.com/SalinCodes/VoxVision/internal/httpclient"
	"github.com/SalinCodes/VoxVision/internal/logging"
	"github.com/SalinCodes/VoxVision/internal/publicurl"
	"github.com/SalinCodes/VoxVision/internal/websocket"
	"github.com/SalinCodes/VoxVision/usecase"
)

func main() {
	envFile := pflag.String("env", ".env", "path to the .env file")
	pflag.Parse()

	envErr := godotenv.Load(*envFile)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		// No logger yet: the level comes from the config
		zap.NewExample().Fatal("Invalid configuration", zap.Error(err))
	}

	// Initialize logger
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		zap.NewExample().Fatal("Failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Info("No .env file loaded, using process environment", zap.String("path", *envFile))
	}

	ctx := context.Background()

	httpClient, err := httpclient.New(cfg.SocksProxy, 0)
	if err != nil {
		logger.Fatal("Failed to build HTTP client", zap.Error(err))
	}
	openaiClient := newOpenAIClient(cfg, httpClient)

	// Initialize adapters
	speechToText, sttCloser, err := newSpeechToText(ctx, cfg, openaiClient, logger)
	if err != nil {
		logger.Fatal("Failed to initialize transcription backend", zap.Error(err))
	}
	defer sttCloser.Close()

	textToSpeech, err := newTextToSpeech(cfg, openaiClient, httpClient, logger)
	if err != nil {
		logger.Fatal("Failed to initialize speech backend", zap.Error(err))
	}

	intentClassifier, err := newClassifier(cfg, httpClient, logger)
	if err != nil {
		logger.Fatal("Failed to load intent classifier", zap.Error(err))
	}

	audioStore, err := storage.NewFileStore(cfg.AudioDir)
	if err != nil {
		logger.Fatal("Failed to prepare audio directory", zap.Error(err))
	}

	// The local responder also serves /send_to_openai. With RESPONDER_URL set
	// the pipeline calls that service instead.
	var localResponder *usecase.ResponderService
	var pipelineResponder repositories.Responder
	if cfg.ResponderURL != "" {
		logger.Info("Using remote responder", zap.String("url", cfg.ResponderURL))
		pipelineResponder = responder.NewRemoteResponder(cfg.ResponderURL, cfg.ResponderTimeout, httpClient, logger)
	} else {
		model, err := newVisionModel(ctx, cfg, openaiClient, logger)
		if err != nil {
			logger.Fatal("Failed to initialize responder backend", zap.Error(err))
		}
		strategies, err := newCaptureStrategies(cfg, httpClient, logger)
		if err != nil {
			logger.Fatal("Failed to initialize camera", zap.Error(err))
		}
		archive, err := newImageArchive(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize image archive", zap.Error(err))
		}
		capture := usecase.NewCaptureService(logger, archive, strategies...)
		localResponder = usecase.NewResponderService(model, capture, logger)
		pipelineResponder = localResponder
	}

	// Initialize usecase services
	speechService := usecase.NewSpeechService(textToSpeech, audioStore, cfg.AudioExtension, logger)
	conversationService := usecase.NewConversationService(
		speechToText,
		intentClassifier,
		pipelineResponder,
		speechService,
		usecase.ConversationConfig{
			Language:             cfg.TranscriptionLanguage,
			ControlPhrases:       cfg.ControlPhrases,
			TranscriptionTimeout: cfg.TranscriptionTimeout,
			ClassifierTimeout:    cfg.ClassifierTimeout,
			ResponderTimeout:     cfg.ResponderTimeout,
			SpeechTimeout:        cfg.SpeechTimeout,
			PipelineTimeout:      cfg.PipelineTimeout,
		},
		logger,
	)

	// Initialize WebSocket hub with conversation service
	hub := websocket.NewHub(conversationService, cfg.MaxConcurrentRequests, logger)
	go hub.Run()

	// The ngrok agent listens on localhost, so skip the proxy
	urls := publicurl.NewResolver(cfg.PublicBaseURL, cfg.NgrokAPIURL, &http.Client{Timeout: 2 * time.Second}, logger)
	urls.Detect(ctx)

	deps := api.Dependencies{
		Hub:              hub,
		ResponderTimeout: cfg.ResponderTimeout,
		AudioStore:       audioStore,
		Devices:          devices.NewMemoryDeviceRepository(cfg.DeviceCredentials),
		URLs:             urls,
		Logger:           logger,
	}
	if localResponder != nil {
		deps.Responder = localResponder
	}
	if cfg.AuthEnabled() {
		tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), 24*time.Hour)
		if err != nil {
			logger.Fatal("Failed to initialize token issuer", zap.Error(err))
		}
		deps.Tokens = tokens
	} else {
		logger.Warn("JWT_SECRET not set, /ws accepts unauthenticated connections")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	api.InitRoutes(e, deps)

	// Graceful shutdown
	go func() {
		if err := e.Start(cfg.ServerAddress()); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("address", cfg.ServerAddress()),
		zap.String("transcription", cfg.TranscriptionBackend),
		zap.String("responder", cfg.ResponderBackend),
		zap.String("speech", cfg.SpeechBackend),
		zap.Int("maxConcurrentRequests", cfg.MaxConcurrentRequests))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := hub.Shutdown(shutdownCtx); err != nil {
		logger.Warn("In-flight requests did not finish in time", zap.Error(err))
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
