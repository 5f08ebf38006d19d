// Package storage keeps uploaded book files behind a small Client interface.
// The only backend is LocalClient, an afero filesystem rooted at the media
// directory; tests use an in-memory filesystem.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/bookshelf/internal/utils"
)

// ErrNotFound is returned when a stored file does not exist.
var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	Name       string
	Path       string
	Size       int64
	ModifiedAt time.Time
}

// Client defines the interface for file storage operations
type Client interface {
	// Download retrieves the contents of a file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Upload writes content to a file path, replacing any previous content
	Upload(ctx context.Context, path string, content io.Reader) error

	// Delete removes a file
	Delete(ctx context.Context, path string) error

	// Exists checks if a file exists
	Exists(ctx context.Context, path string) (bool, error)

	// GetMetadata retrieves file info without downloading content
	GetMetadata(ctx context.Context, path string) (*FileInfo, error)
}

// BookFileKey returns a fresh storage path for an uploaded book file. The
// random prefix keeps two uploads with the same name apart.
func BookFileKey(filename string) string {
	return path.Join("books", uuid.NewString()+"-"+utils.SanitizeFilename(filename))
}

// DisplayName strips the random prefix BookFileKey adds.
func DisplayName(key string) string {
	base := path.Base(key)
	if len(base) > 37 && base[36] == '-' {
		if _, err := uuid.Parse(base[:36]); err == nil {
			return base[37:]
		}
	}
	return base
}
