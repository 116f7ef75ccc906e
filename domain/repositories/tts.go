package repositories

import (
	"context"
	"io"
)

// TextToSpeech abstracts speech synthesis services.
// The caller owns the returned stream and must close it.
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}
