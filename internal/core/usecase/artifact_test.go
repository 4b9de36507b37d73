package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

func TestArtifactStripsPathTraversal(t *testing.T) {
	storage := &storageFake{openBody: "%PDF-1.7"}
	uc := NewArtifactUseCase(storage)

	stream, err := uc.Artifact(context.Background(), "../../etc/passwd")
	if err != nil {
		t.Fatalf("Artifact() error = %v", err)
	}
	defer stream.Close()

	if storage.openedKey != "passwd" {
		t.Fatalf("expected lookup for base name only, got %q", storage.openedKey)
	}
	raw, _ := io.ReadAll(stream)
	if string(raw) != "%PDF-1.7" {
		t.Fatalf("unexpected artifact body %q", raw)
	}
}

func TestArtifactMissReturnsNotFound(t *testing.T) {
	storage := &storageFake{openErr: domain.WrapError(domain.ErrArtifactNotFound, "stat object",
		errors.New("no such key"))}
	uc := NewArtifactUseCase(storage)

	_, err := uc.Artifact(context.Background(), "missing.pdf")
	if !domain.IsKind(err, domain.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestArtifactStorageErrorSurfacesAsNotFound(t *testing.T) {
	storage := &storageFake{openErr: errors.New("connection refused")}
	uc := NewArtifactUseCase(storage)

	_, err := uc.Artifact(context.Background(), "report.pdf")
	if !domain.IsKind(err, domain.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestArtifactRejectsEmptyKey(t *testing.T) {
	storage := &storageFake{}
	uc := NewArtifactUseCase(storage)

	if _, err := uc.Artifact(context.Background(), ".."); !domain.IsKind(err, domain.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound for traversal-only key, got %v", err)
	}
	if storage.openedKey != "" {
		t.Fatalf("expected no storage lookup, got %q", storage.openedKey)
	}
}
