package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*ReportRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ReportRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestFindByKeyReturnsReportNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, document_key, owner_key").
		WithArgs("LPCO-9", "12345678900").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByKey(context.Background(), "LPCO-9", "12345678900")
	if !domain.IsKind(err, domain.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindByKeyScansNullableColumns(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "document_key", "owner_key", "raw_extracted", "user_corrected",
		"source_artifact_key", "final_artifact_key", "created_at", "updated_at",
	}).AddRow("id-1", "LPCO-1", "12345678900", []byte(`{"quimico":{}}`), nil, "LPCO-1_source_x.pdf", nil, now, now)

	mock.ExpectQuery("SELECT id, document_key, owner_key").
		WithArgs("LPCO-1", "12345678900").
		WillReturnRows(rows)

	record, err := repo.FindByKey(context.Background(), "LPCO-1", "12345678900")
	if err != nil {
		t.Fatalf("FindByKey() error = %v", err)
	}
	if !record.Extracted() {
		t.Fatalf("expected extracted record")
	}
	if record.FinalArtifactKey != "" || record.UserCorrectedData != nil {
		t.Fatalf("expected processing fields empty, got %+v", record)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveExtractionAssignsIDAndUpserts(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO reports").
		WithArgs(sqlmock.AnyArg(), "LPCO-1", "12345678900", []byte(`{"quimico":{}}`),
			"LPCO-1_source_x.pdf", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &domain.ReportRecord{
		DocumentKey:       "LPCO-1",
		OwnerKey:          "12345678900",
		RawExtractedData:  json.RawMessage(`{"quimico":{}}`),
		SourceArtifactKey: "LPCO-1_source_x.pdf",
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	if err := repo.SaveExtraction(context.Background(), record); err != nil {
		t.Fatalf("SaveExtraction() error = %v", err)
	}
	if record.ID == "" {
		t.Fatalf("expected assigned record id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveProcessingReturnsReportNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE reports").
		WithArgs("LPCO-9", "12345678900", []byte(`{"quimico":{}}`), "LPCO-9_final_x.pdf", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveProcessing(context.Background(), "LPCO-9", "12345678900",
		json.RawMessage(`{"quimico":{}}`), "LPCO-9_final_x.pdf")
	if !domain.IsKind(err, domain.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListSummariesWrapsStorageFailure(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT r.document_key").
		WillReturnError(sql.ErrConnDone)

	_, err := repo.ListSummaries(context.Background())
	if !domain.IsKind(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindOwnerReturnsOwnerNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	directory := NewOwnerDirectory(db)

	mock.ExpectQuery("SELECT owner_key, display_name").
		WithArgs("99999999999").
		WillReturnError(sql.ErrNoRows)

	_, err = directory.FindOwner(context.Background(), "99999999999")
	if !domain.IsKind(err, domain.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
