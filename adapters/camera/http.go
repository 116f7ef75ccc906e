package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

// HTTPCameraConfig holds configuration for the network camera
type HTTPCameraConfig struct {
	URL     string        // Required: snapshot endpoint, e.g. http://172.20.10.2/capture
	Dir     string        // Required: directory captured frames are written to
	Timeout time.Duration // Optional: defaults to 5s
}

// HTTPCamera fetches a single frame from a camera's snapshot endpoint
type HTTPCamera struct {
	url        string
	dir        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

var _ repositories.CaptureStrategy = (*HTTPCamera)(nil)

// NewHTTPCamera creates the capture strategy and makes sure the image directory exists
func NewHTTPCamera(config HTTPCameraConfig, httpClient *http.Client, logger *zap.Logger) (*HTTPCamera, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("camera URL is required")
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("image directory is required")
	}
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
		logger.Info("Using default camera timeout", zap.Duration("timeout", timeout))
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPCamera{
		url:        config.URL,
		dir:        config.Dir,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *HTTPCamera) Name() string {
	return "http-camera"
}

// Capture downloads a frame to a fresh file and verifies it decodes
func (c *HTTPCamera) Capture(ctx context.Context) (*entities.CapturedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build camera request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError("camera request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewTransportError(fmt.Sprintf("camera returned status %d", resp.StatusCode), nil)
	}

	capturedAt := time.Now()
	path, err := filepath.Abs(filepath.Join(c.dir, captureName(capturedAt)))
	if err != nil {
		return nil, fmt.Errorf("resolve capture path: %w", err)
	}

	if err := writeFile(path, resp.Body); err != nil {
		return nil, apperrors.FromCall("failed to store camera frame", err, apperrors.KindTransport)
	}

	data, mimeType, err := loadVerified(path)
	if err != nil {
		os.Remove(path)
		return nil, apperrors.NewValidationError("camera frame rejected", err)
	}

	c.logger.Info("Captured camera frame",
		zap.String("path", path),
		zap.Int("size", len(data)),
		zap.String("mimeType", mimeType))

	return &entities.CapturedImage{
		Path:       path,
		Data:       data,
		MIMEType:   mimeType,
		Provenance: entities.ProvenanceFresh,
		CapturedAt: capturedAt,
	}, nil
}

// captureName is unique per capture even when the clock is coarse
func captureName(at time.Time) string {
	return fmt.Sprintf("capture_%d_%s.jpg", at.UnixNano(), uuid.NewString()[:8])
}

// writeFile creates path exclusively and removes it again if the copy fails
func writeFile(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
