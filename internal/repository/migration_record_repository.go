package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/casemigrate/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type migrationRecordRepository struct {
	pool *pgxpool.Pool
}

// NewMigrationRecordRepository wires read access to the provenance records
// written by the import executor.
func NewMigrationRecordRepository(pool *pgxpool.Pool) MigrationRecordRepository {
	return &migrationRecordRepository{pool: pool}
}

func (r *migrationRecordRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.MigrationRecord, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, job_id, entity_type, entity_id, modified_after_import, created_at
		 FROM migration_records
		 WHERE job_id = $1
		 ORDER BY created_at`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list migration records: %w", err)
	}
	defer rows.Close()

	records := []domain.MigrationRecord{}
	for rows.Next() {
		var record domain.MigrationRecord
		if err := rows.Scan(
			&record.ID, &record.JobID, &record.EntityType, &record.EntityID,
			&record.ModifiedAfterImport, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate migration records: %w", err)
	}
	return records, nil
}
