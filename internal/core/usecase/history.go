package usecase

import (
	"context"
	"fmt"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/ports"
)

type HistoryUseCase struct {
	repo ports.ReportRepository
}

func NewHistoryUseCase(repo ports.ReportRepository) *HistoryUseCase {
	return &HistoryUseCase{repo: repo}
}

// History lists report summaries newest first. Storage failures surface
// as-is so callers can tell an outage from an empty history.
func (uc *HistoryUseCase) History(ctx context.Context) ([]domain.ReportSummary, error) {
	summaries, err := uc.repo.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list report summaries: %w", err)
	}
	return summaries, nil
}
