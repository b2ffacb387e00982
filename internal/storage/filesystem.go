// Package storage provides blob persistence behind a small bucket-oriented
// interface. The filesystem implementation serves development and test
// environments where an object storage service is not available.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Well-known bucket names. Buckets are configuration, not logic; these are
// the defaults the service provisions.
const (
	BucketUserAssets = "user_assets"
	BucketRenders    = "renders"
	BucketAvatars    = "avatars"
)

// ErrNotFound is returned when a key does not exist in a bucket.
var ErrNotFound = errors.New("storage: object not found")

// BlobStore is the contract the pipeline persists through.
type BlobStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	PublicURL(bucket, key string) string
}

// FileStore keeps each bucket as a directory under a common root.
type FileStore struct {
	basePath string
	baseURL  string
}

// NewFileStore initializes a FileStore rooted at basePath. baseURL is
// prepended when building public URLs.
func NewFileStore(basePath, baseURL string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload persists data under bucket/key and returns the canonicalized key.
// Keys are cleaned to prevent directory traversal.
func (s *FileStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, bucket, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write object: %w", err)
	}
	return cleanKey, nil
}

// Download reads the object at bucket/key.
func (s *FileStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.basePath, bucket, filepath.FromSlash(cleanKey)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read object: %w", err)
	}
	return data, nil
}

// PublicURL returns the externally reachable URL for an object.
func (s *FileStore) PublicURL(bucket, key string) string {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return ""
	}
	return s.baseURL + "/" + bucket + "/" + cleanKey
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

var _ BlobStore = (*FileStore)(nil)
