package domain

import (
	"encoding/json"
	"time"
)

// ReportRecord tracks one laboratory document through its full lifecycle.
// There is no explicit state column: a populated RawExtractedData means the
// document is at least extracted, a populated FinalArtifactKey means it is
// finalized.
type ReportRecord struct {
	ID                string          `json:"id"`
	DocumentKey       string          `json:"document_key"`
	OwnerKey          string          `json:"owner_key"`
	RawExtractedData  json.RawMessage `json:"raw_extracted_data,omitempty"`
	UserCorrectedData json.RawMessage `json:"user_corrected_data,omitempty"`
	SourceArtifactKey string          `json:"source_artifact_key,omitempty"`
	FinalArtifactKey  string          `json:"final_artifact_key,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Extracted reports whether the first pipeline stage already ran for this
// record.
func (r *ReportRecord) Extracted() bool {
	return r != nil && len(r.RawExtractedData) > 0
}

// Owner is a known requesting user. OwnerKey is the digits-only normalized
// form of the identity subject.
type Owner struct {
	OwnerKey    string `json:"owner_key"`
	DisplayName string `json:"display_name"`
}

// ReportSummary is the projection served by the history listing.
type ReportSummary struct {
	DocumentKey       string    `json:"document_key"`
	OwnerDisplayName  string    `json:"owner_display_name"`
	SourceArtifactKey string    `json:"source_artifact_key,omitempty"`
	FinalArtifactKey  string    `json:"final_artifact_key,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProcessResult carries the processing gateway's response metadata plus the
// storage key the generated artifact was persisted under.
type ProcessResult struct {
	Message      string `json:"message"`
	DocumentKey  string `json:"documentKey"`
	ExternalLink string `json:"externalLink,omitempty"`
	ArtifactKey  string `json:"artifactKey"`
}

// AuditEntry records one report finalization, written by the audit worker.
type AuditEntry struct {
	DocumentKey string    `json:"document_key"`
	OwnerKey    string    `json:"owner_key"`
	OccurredAt  time.Time `json:"occurred_at"`
}
