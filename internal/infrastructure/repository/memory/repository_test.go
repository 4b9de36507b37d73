package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

func TestSaveExtractionKeepsIdentityOnUpsert(t *testing.T) {
	repo := NewReportRepository()

	first := &domain.ReportRecord{
		DocumentKey:      "LPCO-1",
		OwnerKey:         "12345678900",
		RawExtractedData: json.RawMessage(`{"quimico":{"ph":1}}`),
		CreatedAt:        time.Now().UTC().Add(-time.Hour),
	}
	if err := repo.SaveExtraction(context.Background(), first); err != nil {
		t.Fatalf("SaveExtraction() error = %v", err)
	}

	second := &domain.ReportRecord{
		DocumentKey:      "LPCO-1",
		OwnerKey:         "12345678900",
		RawExtractedData: json.RawMessage(`{"quimico":{"ph":2}}`),
		CreatedAt:        time.Now().UTC(),
	}
	if err := repo.SaveExtraction(context.Background(), second); err != nil {
		t.Fatalf("SaveExtraction() error = %v", err)
	}

	record, err := repo.FindByKey(context.Background(), "LPCO-1", "12345678900")
	if err != nil {
		t.Fatalf("FindByKey() error = %v", err)
	}
	if record.ID != first.ID {
		t.Fatalf("expected stable id across upserts")
	}
	if string(record.RawExtractedData) != `{"quimico":{"ph":2}}` {
		t.Fatalf("expected last write to win, got %s", record.RawExtractedData)
	}
}

func TestFindByKeyScopesByOwner(t *testing.T) {
	repo := NewReportRepository()
	record := &domain.ReportRecord{
		DocumentKey:      "LPCO-1",
		OwnerKey:         "11111111111",
		RawExtractedData: json.RawMessage(`{}`),
	}
	if err := repo.SaveExtraction(context.Background(), record); err != nil {
		t.Fatalf("SaveExtraction() error = %v", err)
	}

	// Same document key under another owner is a different report.
	_, err := repo.FindByKey(context.Background(), "LPCO-1", "22222222222")
	if !domain.IsKind(err, domain.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound for other owner, got %v", err)
	}
}

func TestSaveProcessingRequiresExistingRecord(t *testing.T) {
	repo := NewReportRepository()

	err := repo.SaveProcessing(context.Background(), "LPCO-1", "12345678900",
		json.RawMessage(`{}`), "LPCO-1_final_x.pdf")
	if !domain.IsKind(err, domain.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestListSummariesNewestFirst(t *testing.T) {
	repo := NewReportRepository()
	base := time.Now().UTC()
	for i, key := range []string{"LPCO-1", "LPCO-2", "LPCO-3"} {
		record := &domain.ReportRecord{
			DocumentKey:      key,
			OwnerKey:         "12345678900",
			RawExtractedData: json.RawMessage(`{}`),
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.SaveExtraction(context.Background(), record); err != nil {
			t.Fatalf("SaveExtraction() error = %v", err)
		}
	}

	summaries, err := repo.ListSummaries(context.Background())
	if err != nil {
		t.Fatalf("ListSummaries() error = %v", err)
	}
	if len(summaries) != 3 || summaries[0].DocumentKey != "LPCO-3" {
		t.Fatalf("expected newest first, got %+v", summaries)
	}
}

func TestOwnerDirectoryLookup(t *testing.T) {
	directory := NewOwnerDirectory(domain.Owner{OwnerKey: "12345678900", DisplayName: "Lab One"})

	owner, err := directory.FindOwner(context.Background(), "12345678900")
	if err != nil {
		t.Fatalf("FindOwner() error = %v", err)
	}
	if owner.DisplayName != "Lab One" {
		t.Fatalf("unexpected owner %+v", owner)
	}

	_, err = directory.FindOwner(context.Background(), "00000000000")
	if !domain.IsKind(err, domain.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}
