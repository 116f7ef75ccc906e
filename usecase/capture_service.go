package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
)

// ErrCaptureFailed is returned when no strategy produced a usable frame
var ErrCaptureFailed = errors.New("image capture failed")

const archiveTimeout = 30 * time.Second

// CaptureService tries capture strategies in order and stops at the first usable frame
type CaptureService struct {
	strategies []repositories.CaptureStrategy
	archive    repositories.ImageArchive
	logger     *zap.Logger
}

// NewCaptureService creates the capture chain. archive may be nil.
func NewCaptureService(logger *zap.Logger, archive repositories.ImageArchive, strategies ...repositories.CaptureStrategy) *CaptureService {
	return &CaptureService{
		strategies: strategies,
		archive:    archive,
		logger:     logger,
	}
}

// Capture returns the first verified frame. When every strategy fails the
// error wraps ErrCaptureFailed and each strategy's reason.
func (s *CaptureService) Capture(ctx context.Context) (*entities.CapturedImage, error) {
	errs := []error{ErrCaptureFailed}

	for _, strategy := range s.strategies {
		img, err := strategy.Capture(ctx)
		if err == nil && img.Usable() {
			s.logger.Info("Image captured",
				zap.String("strategy", strategy.Name()),
				zap.String("provenance", string(img.Provenance)),
				zap.String("path", img.Path))
			return img, nil
		}
		if err == nil {
			err = errors.New("strategy returned no image data")
		}

		s.logger.Warn("Capture strategy failed",
			zap.String("strategy", strategy.Name()),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", strategy.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	return nil, errors.Join(errs...)
}

// Release hands a fresh frame to the archive, if any, and removes it from disk.
// Fallback frames are shared and stay where they are.
func (s *CaptureService) Release(ctx context.Context, requestID string, img *entities.CapturedImage) {
	if img == nil || img.Provenance != entities.ProvenanceFresh {
		return
	}

	if s.archive != nil {
		archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		if err := s.archive.Archive(archiveCtx, requestID, img); err != nil {
			s.logger.Warn("Failed to archive captured frame",
				zap.String("requestID", requestID),
				zap.Error(err))
		}
		cancel()
	}

	if err := os.Remove(img.Path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove captured frame",
			zap.String("path", img.Path),
			zap.Error(err))
	}
}
