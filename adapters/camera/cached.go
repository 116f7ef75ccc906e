package camera

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
	"github.com/SalinCodes/VoxVision/internal/apperrors"
)

// CachedImage serves a previously stored frame when the camera is unreachable
type CachedImage struct {
	path   string
	logger *zap.Logger
}

var _ repositories.CaptureStrategy = (*CachedImage)(nil)

// NewCachedImage points the strategy at dir/name. The file may not exist yet.
func NewCachedImage(dir, name string, logger *zap.Logger) *CachedImage {
	path := filepath.Join(dir, name)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &CachedImage{path: path, logger: logger}
}

func (c *CachedImage) Name() string {
	return "cached-image"
}

// Capture returns the cached frame if it is present and decodable
func (c *CachedImage) Capture(ctx context.Context) (*entities.CapturedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTransportError("capture cancelled", err)
	}

	info, err := os.Stat(c.path)
	if err != nil {
		return nil, apperrors.NewArtifactError("fallback image not found", err)
	}

	data, mimeType, err := loadVerified(c.path)
	if err != nil {
		return nil, apperrors.NewValidationError("fallback image rejected", err)
	}

	c.logger.Info("Using fallback image", zap.String("path", c.path))

	return &entities.CapturedImage{
		Path:       c.path,
		Data:       data,
		MIMEType:   mimeType,
		Provenance: entities.ProvenanceFallback,
		CapturedAt: info.ModTime(),
	}, nil
}
