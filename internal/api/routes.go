package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain"
	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/auth"
	"github.com/SalinCodes/VoxVision/internal/publicurl"
	"github.com/SalinCodes/VoxVision/internal/websocket"
	"github.com/SalinCodes/VoxVision/usecase"
)

const anonymousDevice = "anonymous"

// Dependencies are the services the HTTP surface is built on.
// Responder and Tokens are optional.
type Dependencies struct {
	Hub              *websocket.Hub
	Responder        repositories.Responder
	ResponderTimeout time.Duration
	AudioStore       repositories.ArtifactStore
	Devices          repositories.DeviceRepository
	Tokens           *auth.TokenIssuer
	URLs             *publicurl.Resolver
	Logger           *zap.Logger
}

type handlers struct {
	Dependencies
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies) {
	h := &handlers{Dependencies: deps}

	// Health check
	e.GET("/health", h.health)
	e.GET("/status", h.status)

	e.GET(strings.TrimSuffix(usecase.AudioURLPrefix, "/")+"/:filename", h.serveAudio)

	if deps.Responder != nil {
		e.POST("/send_to_openai", h.respond)
	}

	// Device APIs
	if deps.Tokens != nil {
		v1 := e.Group("/api/v1")
		v1.POST("/device/auth", h.deviceAuth)
	}

	e.GET("/ws", h.websocketWithAuth)
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "voxvision",
		Clients: h.Hub.ClientCount(),
	})
}

func (h *handlers) status(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.StatusResponse{
		Status:    "running",
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
	})
}

func (h *handlers) serveAudio(c echo.Context) error {
	name := c.Param("filename")
	path, err := h.AudioStore.Path(name)
	if err != nil {
		h.Logger.Warn("Rejected audio file name", zap.String("filename", name), zap.Error(err))
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if _, err := os.Stat(path); err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return c.File(path)
}

// respond serves the responder contract: capture when needed, then answer
func (h *handlers) respond(c echo.Context) error {
	var body domain.ResponderRequest
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing text"})
	}

	intent, ok := entities.ParseIntent(body.Intent)
	if !ok {
		h.Logger.Info("Intent missing or unrecognised, defaulting to Chatting", zap.String("intent", body.Intent))
		intent = entities.IntentChatting
	}

	req := entities.NewRequest()
	req.Text = body.Text
	req.Intent = intent

	ctx := usecase.WithRequest(c.Request().Context(), req)
	if h.ResponderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.ResponderTimeout)
		defer cancel()
	}

	reply, err := h.Responder.Answer(ctx, body.Text, intent)
	if err != nil {
		h.Logger.Error("Responder failed",
			zap.String("requestID", req.ID),
			zap.String("intent", intent.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, domain.ResponderError{Error: err.Error()})
	}

	h.Logger.Info("Responder answered",
		zap.String("requestID", req.ID),
		zap.String("intent", intent.String()),
		zap.Bool("imageProcessed", reply.ImageProcessed))

	return c.JSON(http.StatusOK, domain.ResponderResponse{
		Response:       reply.Text,
		ImageProcessed: reply.ImageProcessed,
	})
}

func (h *handlers) deviceAuth(c echo.Context) error {
	var req DeviceAuthRequest

	// Bind and validate request
	if err := c.Bind(&req); err != nil {
		h.Logger.Error("Failed to bind device auth request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if req.SerialNumber == "" || req.SecretKey == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Serial number and secret key are required",
		})
	}

	device, err := h.Devices.ValidateDevice(req.SerialNumber, req.SecretKey)
	if err != nil {
		h.Logger.Warn("Device authentication failed",
			zap.String("serial_number", req.SerialNumber),
			zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid device credentials",
		})
	}

	token, expiresAt, err := h.Tokens.GenerateDeviceToken(device.ID)
	if err != nil {
		h.Logger.Error("Failed to generate device token",
			zap.String("device_id", device.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	h.Logger.Info("Device authenticated successfully",
		zap.String("device_id", device.ID),
		zap.String("serial_number", device.SerialNumber))

	return c.JSON(http.StatusOK, DeviceAuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		DeviceID:  device.ID,
	})
}

// websocketWithAuth handles WebSocket connections, requiring a device token when auth is enabled
func (h *handlers) websocketWithAuth(c echo.Context) error {
	deviceID := anonymousDevice

	if h.Tokens != nil {
		token, err := bearerToken(c.Request())
		if err != nil {
			h.Logger.Warn("WebSocket connection rejected: missing token")
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "JWT token is required in Authorization header",
			})
		}

		claims, err := h.Tokens.ValidateToken(token)
		if err != nil {
			h.Logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired JWT token",
			})
		}
		deviceID = claims.DeviceID

		h.Logger.Info("WebSocket connection authenticated", zap.String("device_id", deviceID))
	}

	return websocket.HandleWebSocket(h.Hub, c, deviceID, h.URLs.BaseURL(c.Request()), h.Logger)
}

var errMissingBearer = errors.New("missing bearer token")

func bearerToken(r *http.Request) (string, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errMissingBearer
	}
	return strings.TrimSpace(token), nil
}
