package domain

import (
	"time"

	"github.com/google/uuid"
)

// MigrationJobStatus is the lifecycle state of a migration job.
type MigrationJobStatus string

const (
	JobStatusPending    MigrationJobStatus = "PENDING"
	JobStatusValidating MigrationJobStatus = "VALIDATING"
	JobStatusMapping    MigrationJobStatus = "MAPPING"
	JobStatusPreview    MigrationJobStatus = "PREVIEW"
	JobStatusImporting  MigrationJobStatus = "IMPORTING"
	JobStatusCompleted  MigrationJobStatus = "COMPLETED"
	JobStatusFailed     MigrationJobStatus = "FAILED"
	JobStatusRolledBack MigrationJobStatus = "ROLLED_BACK"
)

// IsTerminal reports whether no further lifecycle transitions are possible,
// other than COMPLETED moving to ROLLED_BACK.
func (s MigrationJobStatus) IsTerminal() bool {
	return s == JobStatusFailed || s == JobStatusRolledBack
}

// ValidJobStatus reports whether the given value names a lifecycle state.
func ValidJobStatus(s MigrationJobStatus) bool {
	switch s {
	case JobStatusPending, JobStatusValidating, JobStatusMapping, JobStatusPreview,
		JobStatusImporting, JobStatusCompleted, JobStatusFailed, JobStatusRolledBack:
		return true
	}
	return false
}

// MigrationJob tracks one uploaded file through detection, mapping,
// validation, preview, import, and rollback. Jobs are mutated only through
// the state-machine transitions in the migration package.
type MigrationJob struct {
	ID             uuid.UUID          `json:"id"`
	OrganizationID uuid.UUID          `json:"organizationId"`
	SourceType     SourceType         `json:"sourceType"`
	FileName       string             `json:"fileName"`
	FileKey        string             `json:"fileKey"`
	FileSize       int64              `json:"fileSize"`
	Status         MigrationJobStatus `json:"status"`

	TotalRows int `json:"totalRows"`
	ValidRows int `json:"validRows"`
	ErrorRows int `json:"errorRows"`

	FieldMappings    []FieldMapping    `json:"fieldMappings,omitempty"`
	ValidationErrors []ValidationError `json:"validationErrors,omitempty"`
	PreviewRows      []PreviewRow      `json:"previewRows,omitempty"`

	Progress    int    `json:"progress"`
	CurrentStep string `json:"currentStep,omitempty"`

	ErrorMessage string         `json:"errorMessage,omitempty"`
	ErrorDetails map[string]any `json:"errorDetails,omitempty"`

	RollbackDeadline *time.Time `json:"rollbackDeadline,omitempty"`
	RolledBackBy     *uuid.UUID `json:"rolledBackBy,omitempty"`
	RolledBackAt     *time.Time `json:"rolledBackAt,omitempty"`
	ImportedRows     int        `json:"importedRows"`

	CreatedBy uuid.UUID `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewMigrationJob creates a pending job for a freshly uploaded file.
func NewMigrationJob(organizationID uuid.UUID, fileName, fileKey string, fileSize int64, createdBy uuid.UUID) MigrationJob {
	now := time.Now()
	return MigrationJob{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		SourceType:     SourceTypeGeneric,
		FileName:       fileName,
		FileKey:        fileKey,
		FileSize:       fileSize,
		Status:         JobStatusPending,
		CurrentStep:    "awaiting format detection",
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
