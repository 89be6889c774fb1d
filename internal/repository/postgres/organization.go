package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

var _ model.OrganizationStore = (*OrganizationRepository)(nil)

type OrganizationRepository struct {
	db *Connection
}

func NewOrganizationRepository(db *Connection) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const orgColumns = `id, name, description, created_at, updated_at, deleted_at`

func scanOrganization(row pgx.Row) (model.Organization, error) {
	var org model.Organization
	err := row.Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt, &org.UpdatedAt, &org.DeletedAt)
	return org, err
}

func (r *OrganizationRepository) Create(ctx context.Context, org model.Organization) (model.Organization, error) {
	query := `INSERT INTO organizations (id, name, description, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())
			  RETURNING ` + orgColumns

	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}

	saved, err := scanOrganization(r.db.QueryRow(ctx, query, org.ID, org.Name, org.Description))
	if err != nil {
		return model.Organization{}, fmt.Errorf("failed to create organization: %w", err)
	}
	return saved, nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE id = $1 AND deleted_at IS NULL`

	org, err := scanOrganization(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Organization{}, model.ErrNotFound
		}
		return model.Organization{}, fmt.Errorf("failed to get organization by id: %w", err)
	}
	return org, nil
}

func (r *OrganizationRepository) GetByMember(ctx context.Context, userID uuid.UUID) ([]model.Organization, error) {
	query := `SELECT o.id, o.name, o.description, o.created_at, o.updated_at, o.deleted_at
			  FROM organizations o
			  JOIN memberships m ON m.org_id = o.id
			  WHERE m.user_id = $1 AND o.deleted_at IS NULL
			  ORDER BY o.created_at`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations by member: %w", err)
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return orgs, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, org model.Organization) (model.Organization, error) {
	query := `UPDATE organizations SET name = $2, description = $3, updated_at = NOW()
			  WHERE id = $1 AND deleted_at IS NULL
			  RETURNING ` + orgColumns

	saved, err := scanOrganization(r.db.QueryRow(ctx, query, org.ID, org.Name, org.Description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Organization{}, model.ErrNotFound
		}
		return model.Organization{}, fmt.Errorf("failed to update organization: %w", err)
	}
	return saved, nil
}

func (r *OrganizationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE organizations SET deleted_at = NOW(), updated_at = NOW()
			  WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
