package domain

import (
	"time"

	"github.com/google/uuid"
)

// MigrationRecord links an imported domain entity back to the job that
// created it. Records are written by the import executor; this pipeline only
// reads them when deciding what a rollback may delete.
type MigrationRecord struct {
	ID                  uuid.UUID `json:"id"`
	JobID               uuid.UUID `json:"jobId"`
	EntityType          string    `json:"entityType"`
	EntityID            uuid.UUID `json:"entityId"`
	ModifiedAfterImport bool      `json:"modifiedAfterImport"`
	CreatedAt           time.Time `json:"createdAt"`
}
