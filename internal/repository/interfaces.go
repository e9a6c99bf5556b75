package repository

import (
	"context"

	"github.com/rpattn/casemigrate/internal/domain"

	"github.com/google/uuid"
)

// OrganizationRepository defines the interface for tenant operations.
type OrganizationRepository interface {
	Create(ctx context.Context, org domain.Organization) (domain.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Organization, error)
	GetByName(ctx context.Context, name string) (domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
	Update(ctx context.Context, org domain.Organization) (domain.Organization, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// JobFilter narrows job listings.
type JobFilter struct {
	SourceType domain.SourceType
	Status     domain.MigrationJobStatus
}

// MigrationJobRepository defines the interface for migration job persistence.
type MigrationJobRepository interface {
	Create(ctx context.Context, job domain.MigrationJob) (domain.MigrationJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.MigrationJob, error)
	Update(ctx context.Context, job domain.MigrationJob) (domain.MigrationJob, error)
	// UpdateProgress checkpoints progress without rewriting the whole job row.
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int, step string) error
	List(ctx context.Context, organizationID uuid.UUID, filter JobFilter, limit int, offset int) ([]domain.MigrationJob, int, error)
}

// MappingTemplateRepository stores reusable mapping sets per tenant and
// source type, upserted by the (organization, source type, name) triple.
type MappingTemplateRepository interface {
	Upsert(ctx context.Context, template domain.MappingTemplate) (domain.MappingTemplate, error)
	List(ctx context.Context, organizationID uuid.UUID, sourceType domain.SourceType) ([]domain.MappingTemplate, error)
	// Latest returns the most-recently-updated template for the tenant and
	// source type. The second return value is false when none exists.
	Latest(ctx context.Context, organizationID uuid.UUID, sourceType domain.SourceType) (domain.MappingTemplate, bool, error)
}

// MigrationRecordRepository reads the provenance records written by the
// import executor.
type MigrationRecordRepository interface {
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.MigrationRecord, error)
}
