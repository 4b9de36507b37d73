package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/ports"
)

// Projection keys sent to the processing gateway. The reviewer submits the
// whole corrected payload but the gateway only consumes the chemical results
// and header sub-sections.
const (
	sectionChemical = "quimico"
	sectionHeader   = "cabecalho"
)

type ProcessReportUseCase struct {
	owners  ports.OwnerDirectory
	repo    ports.ReportRepository
	storage ports.ObjectStorage
	gateway ports.ProcessingGateway
	events  ports.EventPublisher
	logger  *slog.Logger
}

func NewProcessReportUseCase(
	owners ports.OwnerDirectory,
	repo ports.ReportRepository,
	storage ports.ObjectStorage,
	gateway ports.ProcessingGateway,
	events ports.EventPublisher,
	logger *slog.Logger,
) *ProcessReportUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessReportUseCase{
		owners:  owners,
		repo:    repo,
		storage: storage,
		gateway: gateway,
		events:  events,
		logger:  logger,
	}
}

// Process runs the second pipeline stage. It is deliberately not idempotent:
// re-processing regenerates the artifact and overwrites the record's final
// state. A failure anywhere leaves the record's extraction state untouched.
func (uc *ProcessReportUseCase) Process(
	ctx context.Context,
	documentKey, ownerKey string,
	correctedData json.RawMessage,
) (*domain.ProcessResult, error) {
	sections, err := uc.validateCorrectedData(documentKey, ownerKey, correctedData)
	if err != nil {
		return nil, err
	}

	if _, err := uc.owners.FindOwner(ctx, ownerKey); err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	record, err := uc.repo.FindByKey(ctx, documentKey, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("lookup report: %w", err)
	}
	if !record.Extracted() {
		return nil, domain.WrapError(domain.ErrReportNotFound, "lookup report",
			fmt.Errorf("document %s has no extraction to process", documentKey))
	}

	payload, err := buildGatewayPayload(documentKey, sections)
	if err != nil {
		return nil, err
	}

	stream, meta, err := uc.gateway.ProcessDocument(ctx, documentKey, payload)
	if err != nil {
		return nil, fmt.Errorf("processing gateway: %w", err)
	}
	defer stream.Close()

	spooled, size, cleanup, err := spoolToTemp(stream, "artifact-*.pdf")
	if err != nil {
		return nil, domain.WrapError(domain.ErrProcessingFailed, "spool artifact", err)
	}
	defer cleanup()

	finalKey := artifactKey(documentKey, roleFinal)
	if err := uc.storage.Save(ctx, finalKey, spooled, size, PDFMediaType); err != nil {
		return nil, fmt.Errorf("store final artifact: %w", err)
	}

	if err := uc.repo.SaveProcessing(ctx, documentKey, ownerKey, correctedData, finalKey); err != nil {
		return nil, fmt.Errorf("save processing: %w", err)
	}

	// Finalization events are best-effort; a broker outage never fails a
	// request whose artifact is already persisted.
	if err := uc.events.PublishReportFinalized(ctx, documentKey, ownerKey); err != nil {
		uc.logger.Warn("publish finalization event",
			"document_key", documentKey, "owner_key", ownerKey, "error", err)
	}

	uc.logger.Info("processing completed",
		"document_key", documentKey, "owner_key", ownerKey, "final_key", finalKey)

	result := &domain.ProcessResult{
		Message:      meta.Message,
		DocumentKey:  meta.DocumentKey,
		ExternalLink: meta.ExternalLink,
		ArtifactKey:  finalKey,
	}
	if result.DocumentKey == "" {
		result.DocumentKey = documentKey
	}
	return result, nil
}

func (uc *ProcessReportUseCase) validateCorrectedData(documentKey, ownerKey string, correctedData json.RawMessage) (map[string]json.RawMessage, error) {
	if strings.TrimSpace(documentKey) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate corrected data",
			errors.New("document key is required"))
	}
	if ownerKey == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate corrected data",
			errors.New("owner key is required"))
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(correctedData, &sections); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate corrected data",
			fmt.Errorf("corrected data is not a JSON object: %w", err))
	}
	if len(sections) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate corrected data",
			errors.New("corrected data is empty"))
	}
	return sections, nil
}

func buildGatewayPayload(documentKey string, sections map[string]json.RawMessage) (json.RawMessage, error) {
	projection := map[string]json.RawMessage{
		"nrLpco": json.RawMessage(fmt.Sprintf("%q", documentKey)),
	}
	for _, key := range []string{sectionChemical, sectionHeader} {
		if section, ok := sections[key]; ok {
			projection[key] = section
		}
	}

	payload, err := json.Marshal(projection)
	if err != nil {
		return nil, fmt.Errorf("marshal gateway payload: %w", err)
	}
	return payload, nil
}
