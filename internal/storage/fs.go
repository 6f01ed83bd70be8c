package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FS stores blobs on the local filesystem under dir, keyed as
// "yyyy-mm/<uuid>.<ext>" so a month's uploads land in one directory.
type FS struct {
	dir string
	now func() time.Time
}

func NewFS(dir string) *FS {
	return &FS{dir: dir, now: time.Now}
}

func (s *FS) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrInvalidImageData
	}
	ext := extensionFor(contentType)
	if ext == "" {
		return "", fmt.Errorf("%w: unsupported content type %q", ErrInvalidImageData, contentType)
	}

	key := fmt.Sprintf("%s/%s%s", s.now().UTC().Format("2006-01"), uuid.New(), ext)
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	return key, nil
}

func (s *FS) Get(ctx context.Context, key string) ([]byte, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(clean)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}

func (s *FS) Delete(ctx context.Context, key string) error {
	clean, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(clean))); err != nil {
		if os.IsNotExist(err) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}

// sanitizeKey rejects keys that would escape the storage root.
func sanitizeKey(key string) (string, error) {
	if key == "" {
		return "", ErrBlobNotFound
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") || clean == ".." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return clean, nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
