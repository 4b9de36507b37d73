package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

func TestWriteHistoryXLSX(t *testing.T) {
	summaries := []domain.ReportSummary{
		{
			DocumentKey:       "LPCO-2",
			OwnerDisplayName:  "Lab Two",
			SourceArtifactKey: "LPCO-2_source_x.pdf",
			FinalArtifactKey:  "LPCO-2_final_y.pdf",
			CreatedAt:         time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
		{
			DocumentKey:      "LPCO-1",
			OwnerDisplayName: "Lab One",
			CreatedAt:        time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := WriteHistoryXLSX(&buf, summaries); err != nil {
		t.Fatalf("WriteHistoryXLSX() error = %v", err)
	}

	workbook, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer workbook.Close()

	rows, err := workbook.GetRows("Reports")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "LPCO-2" || rows[1][1] != "Lab Two" {
		t.Fatalf("unexpected first data row %v", rows[1])
	}
	if rows[2][0] != "LPCO-1" {
		t.Fatalf("unexpected second data row %v", rows[2])
	}
}
