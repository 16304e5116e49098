package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// LocalImageStore writes images into a directory served under /images/.
type LocalImageStore struct {
	dir       string
	publicURL string
	now       func() time.Time
}

func NewLocalImageStore(dir, publicURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &LocalImageStore{dir: dir, publicURL: publicURL, now: time.Now}, nil
}

func (s *LocalImageStore) Dir() string {
	return s.dir
}

func (s *LocalImageStore) prefix() string {
	return s.publicURL + "/images/"
}

func (s *LocalImageStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	filename := objectName(s.now(), name)

	f, err := os.OpenFile(filepath.Join(s.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close image file: %w", err)
	}

	return s.prefix() + filename, nil
}

// Delete removes the file behind imgPath. Paths that were not produced by
// this store and files that are already gone are ignored.
func (s *LocalImageStore) Delete(ctx context.Context, imgPath string) error {
	key := keyFromPath(imgPath, s.prefix())
	if key == "" {
		log.Printf("storage: ignoring delete of foreign image path %q", imgPath)
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}
