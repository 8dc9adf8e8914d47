package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrInvalidPath  = errors.New("invalid file path")
	ErrFileNotFound = errors.New("file not found")
)

// FileStorage stores bill attachments under slash-separated keys.
type FileStorage interface {
	// Upload writes file under key and returns the normalized key
	Upload(ctx context.Context, file io.Reader, key string, contentType string) (string, error)

	// Download opens a stored file; unknown keys return ErrFileNotFound
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns a URL the client can fetch the file from
	GetURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	Exists(ctx context.Context, key string) (bool, error)
}

// cleanKey normalizes key to a slash-separated path without a leading slash.
// Keys that clean to nothing are rejected.
func cleanKey(key string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(key)), "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return clean, nil
}
