package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// LocalClient stores files on an afero filesystem below a root directory.
// Paths cannot escape the root.
type LocalClient struct {
	fs afero.Fs
}

var _ Client = (*LocalClient)(nil)

// NewLocalClient roots fsys at root.
func NewLocalClient(fsys afero.Fs, root string) (*LocalClient, error) {
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", root, err)
	}
	return &LocalClient{fs: afero.NewBasePathFs(fsys, root)}, nil
}

// NewOSClient stores files on disk under root.
func NewOSClient(root string) (*LocalClient, error) {
	return NewLocalClient(afero.NewOsFs(), root)
}

func (c *LocalClient) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	return f, nil
}

func (c *LocalClient) Upload(ctx context.Context, path string, content io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := c.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		c.fs.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func (c *LocalClient) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.fs.Remove(path); err != nil {
		return notFound(path, err)
	}
	return nil
}

func (c *LocalClient) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return afero.Exists(c.fs, path)
}

func (c *LocalClient) GetMetadata(ctx context.Context, path string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := c.fs.Stat(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	return &FileInfo{
		Name:       info.Name(),
		Path:       path,
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}, nil
}

func notFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return err
}
