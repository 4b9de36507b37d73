package postgres

import (
	"context"
	"database/sql"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

// AuditLog records report finalizations, written by the audit worker.
type AuditLog struct {
	db *sql.DB
}

func NewAuditLog(db *sql.DB) *AuditLog {
	return &AuditLog{db: db}
}

func (l *AuditLog) RecordFinalization(ctx context.Context, entry domain.AuditEntry) error {
	_, err := l.db.ExecContext(ctx, `
INSERT INTO report_audit (document_key, owner_key, occurred_at)
VALUES ($1, $2, $3)
`, entry.DocumentKey, entry.OwnerKey, entry.OccurredAt)
	if err != nil {
		return domain.WrapError(domain.ErrStorageUnavailable, "insert audit entry", err)
	}
	return nil
}
