package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

// Storage keeps artifacts on the local filesystem. Meant for development and
// tests; production deployments use the S3-compatible store.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/artifacts"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) Save(_ context.Context, key string, data io.Reader, _ int64, _ string) error {
	path := filepath.Join(s.basePath, filepath.Base(key))
	f, err := os.Create(path)
	if err != nil {
		return domain.WrapError(domain.ErrStorageUnavailable, "create artifact file", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return domain.WrapError(domain.ErrStorageUnavailable, "write artifact file", err)
	}
	return nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path := filepath.Join(s.basePath, filepath.Base(key))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrArtifactNotFound, "open artifact file", err)
		}
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "open artifact file", err)
	}
	return f, nil
}
