package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/ports"
)

type ArtifactUseCase struct {
	storage ports.ObjectStorage
}

func NewArtifactUseCase(storage ports.ObjectStorage) *ArtifactUseCase {
	return &ArtifactUseCase{storage: storage}
}

// Artifact streams a stored artifact by key. The key is reduced to its base
// name first so path traversal segments never escape the bucket.
func (uc *ArtifactUseCase) Artifact(ctx context.Context, key string) (io.ReadCloser, error) {
	base := filepath.Base(key)
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return nil, domain.WrapError(domain.ErrArtifactNotFound, "open artifact",
			fmt.Errorf("invalid artifact key %q", key))
	}

	stream, err := uc.storage.Open(ctx, base)
	if err != nil {
		if domain.IsKind(err, domain.ErrArtifactNotFound) {
			return nil, err
		}
		// Storage errors on the read path surface as a miss: no partial
		// bytes have been written yet.
		return nil, domain.WrapError(domain.ErrArtifactNotFound, "open artifact", err)
	}
	return stream, nil
}
