package repositories

import (
	"context"
	"io"
)

// ArtifactStore persists generated files under unique names
type ArtifactStore interface {
	// Save writes the stream under name and returns the absolute path
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	// Stat returns the size of a stored artifact
	Stat(name string) (int64, error)
	// Path resolves a stored artifact name to its absolute path
	Path(name string) (string, error)
}
