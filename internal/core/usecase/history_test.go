package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

func TestHistoryReturnsSummaries(t *testing.T) {
	repo := &repoFake{summaries: []domain.ReportSummary{
		{DocumentKey: "LPCO-2", OwnerDisplayName: "Lab Two", CreatedAt: time.Now().UTC()},
		{DocumentKey: "LPCO-1", OwnerDisplayName: "Lab One", CreatedAt: time.Now().UTC().Add(-time.Hour)},
	}}
	uc := NewHistoryUseCase(repo)

	summaries, err := uc.History(context.Background())
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(summaries) != 2 || summaries[0].DocumentKey != "LPCO-2" {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
}

func TestHistorySurfacesStorageFailure(t *testing.T) {
	repo := &repoFake{listErr: domain.WrapError(domain.ErrStorageUnavailable, "list reports",
		errors.New("connection reset"))}
	uc := NewHistoryUseCase(repo)

	_, err := uc.History(context.Background())
	if !domain.IsKind(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
