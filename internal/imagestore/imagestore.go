// Package imagestore persists processed article images.
package imagestore

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/rs/zerolog"
)

var ErrInvalidKey = errors.New("invalid image key")

type ImageStore interface {
	// Put stores data under key and returns the URL readers should use.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

var storeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storeLogger = l
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return path.Clean(key), nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
