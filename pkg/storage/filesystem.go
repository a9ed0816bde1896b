package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JaimeStill/pashuvision/pkg/lifecycle"
)

// contentTypeSuffix names the sidecar file holding a blob's content type.
const contentTypeSuffix = ".content-type"

type filesystem struct {
	root   string
	logger *slog.Logger
}

func newFilesystem(root string, logger *slog.Logger) *filesystem {
	return &filesystem{root: root, logger: logger}
}

func (f *filesystem) path(key string) string {
	return filepath.Join(f.root, filepath.FromSlash(key))
}

func (f *filesystem) Start(lc *lifecycle.Coordinator) error {
	f.logger.Info("starting storage system", "root", f.root)

	lc.OnStartup(func() {
		if err := os.MkdirAll(f.root, 0o755); err != nil {
			f.logger.Error("storage root initialization failed", "error", err)
			return
		}
		f.logger.Info("storage root ready", "root", f.root)
	})

	return nil
}

func (f *filesystem) Upload(_ context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	dst := f.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	if err := os.WriteFile(dst+contentTypeSuffix, []byte(contentType), 0o644); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

func (f *filesystem) Download(_ context.Context, key string) (*Blob, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	contentType := "application/octet-stream"
	if data, err := os.ReadFile(f.path(key) + contentTypeSuffix); err == nil && len(data) > 0 {
		contentType = string(data)
	}

	return &Blob{
		Body:          file,
		ContentType:   contentType,
		ContentLength: info.Size(),
	}, nil
}

func (f *filesystem) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if err := os.Remove(f.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	os.Remove(f.path(key) + contentTypeSuffix)
	return nil
}

func (f *filesystem) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	_, err := os.Stat(f.path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("check blob %s: %w", key, err)
	}
}
