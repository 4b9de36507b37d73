package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

const historySheet = "Reports"

// WriteHistoryXLSX renders report summaries as a spreadsheet, one row per
// report, newest first as provided by the caller.
func WriteHistoryXLSX(w io.Writer, summaries []domain.ReportSummary) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	index, err := workbook.NewSheet(historySheet)
	if err != nil {
		return fmt.Errorf("create history sheet: %w", err)
	}
	workbook.SetActiveSheet(index)
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := []any{"Document Key", "Owner", "Created At", "Source Artifact", "Final Artifact"}
	if err := workbook.SetSheetRow(historySheet, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, summary := range summaries {
		row := []any{
			summary.DocumentKey,
			summary.OwnerDisplayName,
			summary.CreatedAt.Format("2006-01-02 15:04:05"),
			summary.SourceArtifactKey,
			summary.FinalArtifactKey,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := workbook.SetSheetRow(historySheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := workbook.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
