package ports

import (
	"context"
	"encoding/json"
	"io"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

// ReportExtractor is the inbound contract for the first pipeline stage:
// turning an uploaded PDF into raw structured data.
type ReportExtractor interface {
	Extract(ctx context.Context, documentKey, ownerKey string, file io.Reader, mediaType string) (json.RawMessage, error)
}

// ReportProcessor is the inbound contract for the second pipeline stage:
// turning reviewer-corrected data into a final stored artifact.
type ReportProcessor interface {
	Process(ctx context.Context, documentKey, ownerKey string, correctedData json.RawMessage) (*domain.ProcessResult, error)
}

// ArtifactReader streams a previously stored artifact by storage key.
type ArtifactReader interface {
	Artifact(ctx context.Context, key string) (io.ReadCloser, error)
}

// ReportHistory lists processed reports for display, newest first.
type ReportHistory interface {
	History(ctx context.Context) ([]domain.ReportSummary, error)
}
