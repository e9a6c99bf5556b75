package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpattn/casemigrate/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type mappingTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewMappingTemplateRepository wires a repository backed by pgxpool.
func NewMappingTemplateRepository(pool *pgxpool.Pool) MappingTemplateRepository {
	return &mappingTemplateRepository{pool: pool}
}

func (r *mappingTemplateRepository) Upsert(ctx context.Context, template domain.MappingTemplate) (domain.MappingTemplate, error) {
	mappings, err := json.Marshal(template.Mappings)
	if err != nil {
		return domain.MappingTemplate{}, fmt.Errorf("failed to encode template mappings: %w", err)
	}

	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO mapping_templates (id, organization_id, source_type, name, mappings, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (organization_id, source_type, name)
		 DO UPDATE SET mappings = EXCLUDED.mappings, updated_at = now()
		 RETURNING id, created_at, updated_at`,
		template.ID, template.OrganizationID, template.SourceType, template.Name,
		mappings, template.CreatedAt, template.UpdatedAt,
	)
	if err := row.Scan(&template.ID, &template.CreatedAt, &template.UpdatedAt); err != nil {
		return domain.MappingTemplate{}, fmt.Errorf("failed to upsert mapping template: %w", err)
	}
	return template, nil
}

func (r *mappingTemplateRepository) List(ctx context.Context, organizationID uuid.UUID, sourceType domain.SourceType) ([]domain.MappingTemplate, error) {
	query := `SELECT id, organization_id, source_type, name, mappings, created_at, updated_at
		 FROM mapping_templates WHERE organization_id = $1`
	args := []any{organizationID}
	if sourceType != "" {
		args = append(args, sourceType)
		query += " AND source_type = $2"
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list mapping templates: %w", err)
	}
	defer rows.Close()

	templates := []domain.MappingTemplate{}
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mapping template: %w", err)
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mapping templates: %w", err)
	}
	return templates, nil
}

func (r *mappingTemplateRepository) Latest(ctx context.Context, organizationID uuid.UUID, sourceType domain.SourceType) (domain.MappingTemplate, bool, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, organization_id, source_type, name, mappings, created_at, updated_at
		 FROM mapping_templates
		 WHERE organization_id = $1 AND source_type = $2
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		organizationID, sourceType,
	)
	template, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MappingTemplate{}, false, nil
		}
		return domain.MappingTemplate{}, false, fmt.Errorf("failed to load latest mapping template: %w", err)
	}
	return template, true, nil
}

func scanTemplate(row rowScanner) (domain.MappingTemplate, error) {
	var (
		template domain.MappingTemplate
		mappings []byte
	)
	if err := row.Scan(
		&template.ID, &template.OrganizationID, &template.SourceType, &template.Name,
		&mappings, &template.CreatedAt, &template.UpdatedAt,
	); err != nil {
		return domain.MappingTemplate{}, err
	}
	if len(mappings) > 0 {
		if err := json.Unmarshal(mappings, &template.Mappings); err != nil {
			return domain.MappingTemplate{}, fmt.Errorf("failed to decode template mappings: %w", err)
		}
	}
	return template, nil
}
