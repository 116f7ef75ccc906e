package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/SalinCodes/VoxVision/domain/repositories"
)

// ErrInvalidName is returned for names that would escape the store directory
var ErrInvalidName = errors.New("invalid artifact name")

// FileStore keeps artifacts as flat files in a single directory
type FileStore struct {
	root string
}

var _ repositories.ArtifactStore = (*FileStore)(nil)

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the absolute store directory
func (s *FileStore) Root() string {
	return s.root
}

// Path resolves name inside the store. Separators and dot names are rejected.
func (s *FileStore) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.root, name), nil
}

// Save streams r into a new file. A partial file is removed on failure.
func (s *FileStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return path, nil
}

// Stat returns the size of a stored file
func (s *FileStore) Stat(name string) (int64, error) {
	path, err := s.Path(name)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %q is a directory", ErrInvalidName, name)
	}
	return info.Size(), nil
}
