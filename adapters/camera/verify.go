package camera

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyImage   = errors.New("image file is empty")
	ErrInvalidImage = errors.New("image data cannot be decoded")
)

// loadVerified reads path and checks that it holds a decodable image.
// It returns the bytes and their sniffed MIME type.
func loadVerified(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, mimetype.Detect(data).String(), nil
}
