package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/casemigrate/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// organizationRepository implements OrganizationRepository backed by pgxpool.
type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository creates a new organization repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

// Create creates a new organization.
func (r *organizationRepository) Create(ctx context.Context, org domain.Organization) (domain.Organization, error) {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO organizations (id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		org.ID, org.Name, org.Description, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

// GetByID retrieves an organization by ID.
func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Organization, error) {
	var org domain.Organization
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name, description, created_at, updated_at FROM organizations WHERE id = $1`,
		id,
	).Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// GetByName retrieves an organization by name.
func (r *organizationRepository) GetByName(ctx context.Context, name string) (domain.Organization, error) {
	var org domain.Organization
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name, description, created_at, updated_at FROM organizations WHERE name = $1`,
		name,
	).Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("failed to get organization by name: %w", err)
	}
	return org, nil
}

// List retrieves all organizations.
func (r *organizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, description, created_at, updated_at FROM organizations ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	organizations := []domain.Organization{}
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		organizations = append(organizations, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return organizations, nil
}

// Update updates an organization.
func (r *organizationRepository) Update(ctx context.Context, org domain.Organization) (domain.Organization, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE organizations SET name = $2, description = $3, updated_at = now() WHERE id = $1`,
		org.ID, org.Name, org.Description,
	)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("failed to update organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Organization{}, fmt.Errorf("organization %s not found", org.ID)
	}
	return org, nil
}

// Delete deletes an organization.
func (r *organizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return nil
}
