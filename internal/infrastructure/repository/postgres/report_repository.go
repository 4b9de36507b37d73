package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS owners (
	owner_key TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	document_key TEXT NOT NULL,
	owner_key TEXT NOT NULL REFERENCES owners(owner_key),
	raw_extracted JSONB,
	user_corrected JSONB,
	source_artifact_key TEXT,
	final_artifact_key TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (document_key, owner_key)
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);

CREATE TABLE IF NOT EXISTS report_audit (
	id BIGSERIAL PRIMARY KEY,
	document_key TEXT NOT NULL,
	owner_key TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ReportRepository) FindByKey(ctx context.Context, documentKey, ownerKey string) (*domain.ReportRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, document_key, owner_key, raw_extracted, user_corrected,
	source_artifact_key, final_artifact_key, created_at, updated_at
FROM reports
WHERE document_key = $1 AND owner_key = $2
`, documentKey, ownerKey)

	var (
		record        domain.ReportRecord
		rawExtracted  []byte
		userCorrected []byte
		sourceKey     sql.NullString
		finalKey      sql.NullString
	)
	err := row.Scan(
		&record.ID, &record.DocumentKey, &record.OwnerKey, &rawExtracted, &userCorrected,
		&sourceKey, &finalKey, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrReportNotFound, "find report",
				fmt.Errorf("no report for document %s", documentKey))
		}
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "scan report", err)
	}

	record.RawExtractedData = json.RawMessage(rawExtracted)
	record.UserCorrectedData = json.RawMessage(userCorrected)
	record.SourceArtifactKey = sourceKey.String
	record.FinalArtifactKey = finalKey.String
	return &record, nil
}

// SaveExtraction upserts on (document_key, owner_key) with last-write-wins
// semantics: concurrent first-time extractions may both reach this point and
// the later one overwrites.
func (r *ReportRepository) SaveExtraction(ctx context.Context, record *domain.ReportRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO reports (id, document_key, owner_key, raw_extracted, source_artifact_key, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (document_key, owner_key) DO UPDATE
SET raw_extracted = EXCLUDED.raw_extracted,
	source_artifact_key = EXCLUDED.source_artifact_key,
	updated_at = EXCLUDED.updated_at
`,
		record.ID, record.DocumentKey, record.OwnerKey, []byte(record.RawExtractedData),
		record.SourceArtifactKey, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrStorageUnavailable, "upsert extraction", err)
	}
	return nil
}

func (r *ReportRepository) SaveProcessing(ctx context.Context, documentKey, ownerKey string, correctedData json.RawMessage, finalArtifactKey string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE reports
SET user_corrected = $3, final_artifact_key = $4, updated_at = $5
WHERE document_key = $1 AND owner_key = $2
`, documentKey, ownerKey, []byte(correctedData), finalArtifactKey, time.Now().UTC())
	if err != nil {
		return domain.WrapError(domain.ErrStorageUnavailable, "update processing", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.WrapError(domain.ErrStorageUnavailable, "update processing", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrReportNotFound, "update processing",
			fmt.Errorf("no report for document %s", documentKey))
	}
	return nil
}

func (r *ReportRepository) ListSummaries(ctx context.Context) ([]domain.ReportSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT r.document_key, COALESCE(o.display_name, ''), COALESCE(r.source_artifact_key, ''),
	COALESCE(r.final_artifact_key, ''), r.created_at
FROM reports r
LEFT JOIN owners o ON o.owner_key = r.owner_key
ORDER BY r.created_at DESC
`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "list reports", err)
	}
	defer rows.Close()

	summaries := []domain.ReportSummary{}
	for rows.Next() {
		var summary domain.ReportSummary
		if err := rows.Scan(
			&summary.DocumentKey, &summary.OwnerDisplayName,
			&summary.SourceArtifactKey, &summary.FinalArtifactKey, &summary.CreatedAt,
		); err != nil {
			return nil, domain.WrapError(domain.ErrStorageUnavailable, "scan report summary", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "iterate report summaries", err)
	}
	return summaries, nil
}
