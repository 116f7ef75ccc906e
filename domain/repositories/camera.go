package repositories

import (
	"context"

	"github.com/SalinCodes/VoxVision/domain/entities"
)

// CaptureStrategy is one way of obtaining a verified camera frame
type CaptureStrategy interface {
	Name() string
	Capture(ctx context.Context) (*entities.CapturedImage, error)
}

// ImageArchive keeps captured frames after a request is done with them
type ImageArchive interface {
	Archive(ctx context.Context, requestID string, image *entities.CapturedImage) error
}
