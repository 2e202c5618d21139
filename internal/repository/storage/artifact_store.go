package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/domain"
)

// ArtifactStore persists rendered report artifacts by key
type ArtifactStore interface {
	// Put stores the content under key and returns its location
	Put(ctx context.Context, key string, data io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (int64, error)
}

// URLSigner is implemented by stores that can hand out temporary download links
type URLSigner interface {
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

var errInvalidKey = errors.New("invalid artifact key")

// validateKey rejects keys that could escape the store root
func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", errInvalidKey, key)
	}
	return nil
}

// LocalArtifactStore keeps artifacts in a directory on the local filesystem
type LocalArtifactStore struct {
	dir string
}

// NewLocalArtifactStore creates the directory if needed and returns a store rooted at it
func NewLocalArtifactStore(dir string) (*LocalArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &LocalArtifactStore{dir: dir}, nil
}

// Dir returns the root directory
func (s *LocalArtifactStore) Dir() string {
	return s.dir
}

// Put writes the artifact atomically and returns its file path
func (s *LocalArtifactStore) Put(ctx context.Context, key string, data io.Reader, size int64, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}

	target := filepath.Join(s.dir, key)
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return target, nil
}

// Open returns a reader for a stored artifact
func (s *LocalArtifactStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, err
	}
	return f, nil
}

// Stat returns the stored size of an artifact
func (s *LocalArtifactStore) Stat(ctx context.Context, key string) (int64, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}
	info, err := os.Stat(filepath.Join(s.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, domain.ErrArtifactNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}
