package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rpattn/casemigrate/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type migrationJobRepository struct {
	pool *pgxpool.Pool
}

// NewMigrationJobRepository wires a repository backed by pgxpool.
func NewMigrationJobRepository(pool *pgxpool.Pool) MigrationJobRepository {
	return &migrationJobRepository{pool: pool}
}

const jobColumns = `id, organization_id, source_type, file_name, file_key, file_size, status,
	total_rows, valid_rows, error_rows, field_mappings, validation_errors, preview_rows,
	progress, current_step, error_message, error_details, rollback_deadline, rolled_back_by,
	rolled_back_at, imported_rows, created_by, created_at, updated_at`

func (r *migrationJobRepository) Create(ctx context.Context, job domain.MigrationJob) (domain.MigrationJob, error) {
	mappings, validationErrors, previewRows, details, err := marshalJobSnapshots(job)
	if err != nil {
		return domain.MigrationJob{}, err
	}

	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO migration_jobs (`+jobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		job.ID, job.OrganizationID, job.SourceType, job.FileName, job.FileKey, job.FileSize, job.Status,
		job.TotalRows, job.ValidRows, job.ErrorRows, mappings, validationErrors, previewRows,
		job.Progress, job.CurrentStep, job.ErrorMessage, details, job.RollbackDeadline, job.RolledBackBy,
		job.RolledBackAt, job.ImportedRows, job.CreatedBy, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to create migration job: %w", err)
	}
	return job, nil
}

func (r *migrationJobRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.MigrationJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM migration_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to get migration job: %w", err)
	}
	return job, nil
}

func (r *migrationJobRepository) Update(ctx context.Context, job domain.MigrationJob) (domain.MigrationJob, error) {
	mappings, validationErrors, previewRows, details, err := marshalJobSnapshots(job)
	if err != nil {
		return domain.MigrationJob{}, err
	}

	job.UpdatedAt = time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE migration_jobs SET
			source_type = $2, status = $3, total_rows = $4, valid_rows = $5, error_rows = $6,
			field_mappings = $7, validation_errors = $8, preview_rows = $9, progress = $10,
			current_step = $11, error_message = $12, error_details = $13, rollback_deadline = $14,
			rolled_back_by = $15, rolled_back_at = $16, imported_rows = $17, updated_at = $18
		 WHERE id = $1`,
		job.ID, job.SourceType, job.Status, job.TotalRows, job.ValidRows, job.ErrorRows,
		mappings, validationErrors, previewRows, job.Progress,
		job.CurrentStep, job.ErrorMessage, details, job.RollbackDeadline,
		job.RolledBackBy, job.RolledBackAt, job.ImportedRows, job.UpdatedAt,
	)
	if err != nil {
		return domain.MigrationJob{}, fmt.Errorf("failed to update migration job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.MigrationJob{}, fmt.Errorf("migration job %s not found", job.ID)
	}
	return job, nil
}

func (r *migrationJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress int, step string) error {
	_, err := r.pool.Exec(
		ctx,
		`UPDATE migration_jobs SET progress = $2, current_step = $3, updated_at = now() WHERE id = $1`,
		id, progress, step,
	)
	if err != nil {
		return fmt.Errorf("failed to checkpoint progress: %w", err)
	}
	return nil
}

func (r *migrationJobRepository) List(ctx context.Context, organizationID uuid.UUID, filter JobFilter, limit, offset int) ([]domain.MigrationJob, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := "WHERE organization_id = $1"
	args := []any{organizationID}
	if filter.SourceType != "" {
		args = append(args, filter.SourceType)
		where += fmt.Sprintf(" AND source_type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM migration_jobs `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count migration jobs: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+jobColumns+` FROM migration_jobs `+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list migration jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.MigrationJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan migration job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate migration jobs: %w", err)
	}

	return jobs, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (domain.MigrationJob, error) {
	var (
		job              domain.MigrationJob
		mappings         []byte
		validationErrors []byte
		previewRows      []byte
		details          []byte
		currentStep      pgtype.Text
		errorMessage     pgtype.Text
		rollbackDeadline pgtype.Timestamptz
		rolledBackBy     *uuid.UUID
		rolledBackAt     pgtype.Timestamptz
	)

	if err := row.Scan(
		&job.ID, &job.OrganizationID, &job.SourceType, &job.FileName, &job.FileKey, &job.FileSize, &job.Status,
		&job.TotalRows, &job.ValidRows, &job.ErrorRows, &mappings, &validationErrors, &previewRows,
		&job.Progress, &currentStep, &errorMessage, &details, &rollbackDeadline, &rolledBackBy,
		&rolledBackAt, &job.ImportedRows, &job.CreatedBy, &job.CreatedAt, &job.UpdatedAt,
	); err != nil {
		return domain.MigrationJob{}, err
	}

	job.CurrentStep = currentStep.String
	job.ErrorMessage = errorMessage.String
	job.RolledBackBy = rolledBackBy
	if rollbackDeadline.Valid {
		deadline := rollbackDeadline.Time
		job.RollbackDeadline = &deadline
	}
	if rolledBackAt.Valid {
		at := rolledBackAt.Time
		job.RolledBackAt = &at
	}

	if len(mappings) > 0 {
		if err := json.Unmarshal(mappings, &job.FieldMappings); err != nil {
			return domain.MigrationJob{}, fmt.Errorf("failed to decode field mappings: %w", err)
		}
	}
	if len(validationErrors) > 0 {
		if err := json.Unmarshal(validationErrors, &job.ValidationErrors); err != nil {
			return domain.MigrationJob{}, fmt.Errorf("failed to decode validation errors: %w", err)
		}
	}
	if len(previewRows) > 0 {
		if err := json.Unmarshal(previewRows, &job.PreviewRows); err != nil {
			return domain.MigrationJob{}, fmt.Errorf("failed to decode preview rows: %w", err)
		}
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &job.ErrorDetails); err != nil {
			return domain.MigrationJob{}, fmt.Errorf("failed to decode error details: %w", err)
		}
	}

	return job, nil
}

func marshalJobSnapshots(job domain.MigrationJob) (mappings, validationErrors, previewRows, details []byte, err error) {
	if job.FieldMappings != nil {
		if mappings, err = json.Marshal(job.FieldMappings); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to encode field mappings: %w", err)
		}
	}
	if job.ValidationErrors != nil {
		if validationErrors, err = json.Marshal(job.ValidationErrors); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to encode validation errors: %w", err)
		}
	}
	if job.PreviewRows != nil {
		if previewRows, err = json.Marshal(job.PreviewRows); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to encode preview rows: %w", err)
		}
	}
	if job.ErrorDetails != nil {
		if details, err = json.Marshal(job.ErrorDetails); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to encode error details: %w", err)
		}
	}
	return mappings, validationErrors, previewRows, details, nil
}
