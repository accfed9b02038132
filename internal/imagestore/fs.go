package imagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type FSStore struct { // implements ImageStore
	dir       string
	publicURL string
}

func NewFSStore(dir, publicURL string) *FSStore {
	return &FSStore{dir: dir, publicURL: publicURL}
}

func (s *FSStore) Dir() string {
	return s.dir
}

func (s *FSStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	storeLogger.Debug().Str("key", key).Int("size", len(data)).Msg("Image written")
	return joinURL(s.publicURL, key), nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
