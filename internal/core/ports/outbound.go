package ports

import (
	"context"
	"encoding/json"
	"io"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

// ReportRepository persists report records keyed by (documentKey, ownerKey).
// Upsert semantics are last-write-wins; the repository never deletes.
type ReportRepository interface {
	FindByKey(ctx context.Context, documentKey, ownerKey string) (*domain.ReportRecord, error)
	SaveExtraction(ctx context.Context, record *domain.ReportRecord) error
	SaveProcessing(ctx context.Context, documentKey, ownerKey string, correctedData json.RawMessage, finalArtifactKey string) error
	ListSummaries(ctx context.Context) ([]domain.ReportSummary, error)
}

// OwnerDirectory resolves normalized owner keys to known owners.
type OwnerDirectory interface {
	FindOwner(ctx context.Context, ownerKey string) (*domain.Owner, error)
}

// ObjectStorage stores source uploads and generated artifacts.
// Open performs a presence check before any bytes are streamed.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ExtractionGateway calls the external AI extraction endpoint with the raw
// PDF and returns the structured payload as-is.
type ExtractionGateway interface {
	ExtractDocument(ctx context.Context, documentKey, filename, mediaType string, file io.Reader) (json.RawMessage, error)
}

// ProcessingMeta is the non-stream part of a processing gateway response.
type ProcessingMeta struct {
	Message      string
	DocumentKey  string
	ExternalLink string
}

// ProcessingGateway calls the external AI processing endpoint with corrected
// data and returns the generated artifact as a byte stream plus metadata.
// The caller owns the returned stream and must close it.
type ProcessingGateway interface {
	ProcessDocument(ctx context.Context, documentKey string, payload json.RawMessage) (io.ReadCloser, ProcessingMeta, error)
}

// DocumentValidator checks that an upload is structurally a readable
// document before any storage write or gateway call.
type DocumentValidator interface {
	ValidatePDF(r io.ReaderAt, size int64) error
}

// EventPublisher emits pipeline lifecycle events for downstream consumers.
type EventPublisher interface {
	PublishReportFinalized(ctx context.Context, documentKey, ownerKey string) error
}

// AuditLog records finalization events, consumed by the audit worker.
type AuditLog interface {
	RecordFinalization(ctx context.Context, entry domain.AuditEntry) error
}
