package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

// ReportRepository is the fixture implementation backing tests and local
// experiments. It mirrors the postgres repository's semantics, including
// last-write-wins upserts.
type ReportRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.ReportRecord
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{records: make(map[string]*domain.ReportRecord)}
}

func recordKey(documentKey, ownerKey string) string {
	return documentKey + "|" + ownerKey
}

func (r *ReportRepository) FindByKey(_ context.Context, documentKey, ownerKey string) (*domain.ReportRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[recordKey(documentKey, ownerKey)]
	if !ok {
		return nil, domain.WrapError(domain.ErrReportNotFound, "find report",
			fmt.Errorf("no report for document %s", documentKey))
	}
	copyRecord := *record
	return &copyRecord, nil
}

func (r *ReportRepository) SaveExtraction(_ context.Context, record *domain.ReportRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	key := recordKey(record.DocumentKey, record.OwnerKey)
	if existing, ok := r.records[key]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}
	copyRecord := *record
	r.records[key] = &copyRecord
	return nil
}

func (r *ReportRepository) SaveProcessing(_ context.Context, documentKey, ownerKey string, correctedData json.RawMessage, finalArtifactKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[recordKey(documentKey, ownerKey)]
	if !ok {
		return domain.WrapError(domain.ErrReportNotFound, "update processing",
			fmt.Errorf("no report for document %s", documentKey))
	}
	record.UserCorrectedData = correctedData
	record.FinalArtifactKey = finalArtifactKey
	record.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ReportRepository) ListSummaries(_ context.Context) ([]domain.ReportSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]domain.ReportSummary, 0, len(r.records))
	for _, record := range r.records {
		summaries = append(summaries, domain.ReportSummary{
			DocumentKey:       record.DocumentKey,
			SourceArtifactKey: record.SourceArtifactKey,
			FinalArtifactKey:  record.FinalArtifactKey,
			CreatedAt:         record.CreatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// OwnerDirectory is a fixture directory seeded with known owners.
type OwnerDirectory struct {
	mu     sync.RWMutex
	owners map[string]domain.Owner
}

func NewOwnerDirectory(owners ...domain.Owner) *OwnerDirectory {
	directory := &OwnerDirectory{owners: make(map[string]domain.Owner, len(owners))}
	for _, owner := range owners {
		directory.owners[owner.OwnerKey] = owner
	}
	return directory
}

func (d *OwnerDirectory) FindOwner(_ context.Context, ownerKey string) (*domain.Owner, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	owner, ok := d.owners[ownerKey]
	if !ok {
		return nil, domain.WrapError(domain.ErrOwnerNotFound, "find owner",
			fmt.Errorf("no owner %s", ownerKey))
	}
	return &owner, nil
}
