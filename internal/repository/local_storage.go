package repository

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	appConfig "github.com/palaver-chat/palaver/internal/config"
	"github.com/palaver-chat/palaver/internal/domain"
)

// LocalStorageProvider implements domain.StorageProvider on the local
// filesystem. Binaries are stored under the record id; the original filename
// only appears in the download URL.
type LocalStorageProvider struct {
	dir     string
	enabled bool
}

// NewLocalStorageProvider creates a new local disk provider
func NewLocalStorageProvider(cfg appConfig.LocalStorageConfig) *LocalStorageProvider {
	return &LocalStorageProvider{
		dir:     cfg.Dir,
		enabled: cfg.Enabled,
	}
}

// Enabled reports whether the provider was switched on in configuration
func (p *LocalStorageProvider) Enabled() bool {
	return p.enabled
}

// Save writes the binary to disk and returns the download URL
func (p *LocalStorageProvider) Save(ctx context.Context, content io.Reader, file *domain.File) (string, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	path := filepath.Join(p.dir, file.ID)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, content); err != nil {
		// Clean up the partial write
		os.Remove(path)
		return "", fmt.Errorf("failed to write file content: %w", err)
	}

	return p.ResolveURL(file), nil
}

// ResolveURL returns the path this service serves the binary from
func (p *LocalStorageProvider) ResolveURL(file *domain.File) string {
	return fmt.Sprintf("/files/%s/%s", file.ID, url.PathEscape(file.Name))
}

// Open streams a stored binary back for serving downloads
func (p *LocalStorageProvider) Open(ctx context.Context, file *domain.File) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(p.dir, file.ID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, nil
}
