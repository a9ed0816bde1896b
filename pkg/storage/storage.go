// Package storage stores photo and attachment bytes in a blob store, either
// a local directory tree or Azure Blob Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/pashuvision/pkg/lifecycle"
)

// Blob is an open blob stream with its metadata. Callers must close Body.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that prepares the container or root directory.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to the blob at key with the given content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download opens the blob at key. Returns ErrNotFound if it does not exist.
	Download(ctx context.Context, key string) (*Blob, error)
	// Delete removes the blob at key. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the storage system selected by cfg.Provider. Remote
// connections are not made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderFilesystem, "":
		return newFilesystem(cfg.Root, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// ReadAll downloads the blob at key fully into memory.
func ReadAll(ctx context.Context, sys System, key string) ([]byte, string, error) {
	blob, err := sys.Download(ctx, key)
	if err != nil {
		return nil, "", err
	}
	defer blob.Body.Close()

	data, err := io.ReadAll(blob.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, blob.ContentType, nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	for segment := range strings.SplitSeq(key, "/") {
		if segment == ".." {
			return ErrInvalidKey
		}
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	return nil
}
