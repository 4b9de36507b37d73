package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/ports"
)

// PDFMediaType is the only media type the pipeline accepts for uploads.
const PDFMediaType = "application/pdf"

type ExtractReportUseCase struct {
	owners    ports.OwnerDirectory
	repo      ports.ReportRepository
	storage   ports.ObjectStorage
	gateway   ports.ExtractionGateway
	validator ports.DocumentValidator
	logger    *slog.Logger
}

func NewExtractReportUseCase(
	owners ports.OwnerDirectory,
	repo ports.ReportRepository,
	storage ports.ObjectStorage,
	gateway ports.ExtractionGateway,
	validator ports.DocumentValidator,
	logger *slog.Logger,
) *ExtractReportUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractReportUseCase{
		owners:    owners,
		repo:      repo,
		storage:   storage,
		gateway:   gateway,
		validator: validator,
		logger:    logger,
	}
}

// Extract runs the first pipeline stage. A record that already carries raw
// extracted data short-circuits before any storage write or gateway call;
// the uploaded bytes are discarded. The upload is spooled to a local
// temporary file that is removed on every exit path.
func (uc *ExtractReportUseCase) Extract(
	ctx context.Context,
	documentKey, ownerKey string,
	file io.Reader,
	mediaType string,
) (json.RawMessage, error) {
	if err := uc.validateInput(documentKey, ownerKey, file, mediaType); err != nil {
		return nil, err
	}

	owner, err := uc.owners.FindOwner(ctx, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	existing, err := uc.repo.FindByKey(ctx, documentKey, ownerKey)
	if err != nil && !domain.IsKind(err, domain.ErrReportNotFound) {
		return nil, fmt.Errorf("lookup report: %w", err)
	}
	if existing.Extracted() {
		uc.logger.Info("extraction cache hit",
			"document_key", documentKey, "owner_key", ownerKey)
		return existing.RawExtractedData, nil
	}

	spooled, size, cleanup, err := spoolToTemp(file, "upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	defer cleanup()

	if err := uc.validator.ValidatePDF(spooled, size); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate pdf", err)
	}

	sourceKey := artifactKey(documentKey, roleSource)
	if _, err := spooled.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	if err := uc.storage.Save(ctx, sourceKey, spooled, size, mediaType); err != nil {
		return nil, fmt.Errorf("store source document: %w", err)
	}

	if _, err := spooled.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	raw, err := uc.gateway.ExtractDocument(ctx, documentKey, sourceKey, mediaType, spooled)
	if err != nil {
		return nil, fmt.Errorf("extraction gateway: %w", err)
	}

	now := time.Now().UTC()
	record := &domain.ReportRecord{
		DocumentKey:       documentKey,
		OwnerKey:          owner.OwnerKey,
		RawExtractedData:  raw,
		SourceArtifactKey: sourceKey,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.SaveExtraction(ctx, record); err != nil {
		return nil, fmt.Errorf("save extraction: %w", err)
	}

	uc.logger.Info("extraction completed",
		"document_key", documentKey, "owner_key", ownerKey, "source_key", sourceKey)
	return raw, nil
}

func (uc *ExtractReportUseCase) validateInput(documentKey, ownerKey string, file io.Reader, mediaType string) error {
	switch {
	case file == nil:
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("document file is required"))
	case strings.TrimSpace(documentKey) == "":
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("document key is required"))
	case ownerKey == "":
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("owner key is required"))
	case mediaType != PDFMediaType:
		return domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("unsupported media type %q", mediaType))
	}
	return nil
}

// spoolToTemp copies a request body to a temporary file so the bytes can be
// read more than once. The returned cleanup closes and removes the file and
// is safe to call on every exit path.
func spoolToTemp(src io.Reader, pattern string) (*os.File, int64, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}

	size, err := io.Copy(f, src)
	if err != nil {
		cleanup()
		return nil, 0, nil, fmt.Errorf("copy to temp file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, 0, nil, fmt.Errorf("rewind temp file: %w", err)
	}
	return f, size, cleanup, nil
}
