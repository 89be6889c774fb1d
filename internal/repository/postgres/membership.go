package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

var _ model.MembershipStore = (*MembershipRepository)(nil)

type MembershipRepository struct {
	db *Connection
}

func NewMembershipRepository(db *Connection) *MembershipRepository {
	return &MembershipRepository{db: db}
}

const membershipColumns = `id, org_id, user_id, role, created_at, updated_at`

func scanMembership(row pgx.Row) (model.Membership, error) {
	var m model.Membership
	err := row.Scan(&m.ID, &m.OrgID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *MembershipRepository) Create(ctx context.Context, m model.Membership) (model.Membership, error) {
	query := `INSERT INTO memberships (id, org_id, user_id, role, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())
			  RETURNING ` + membershipColumns

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	saved, err := scanMembership(r.db.QueryRow(ctx, query, m.ID, m.OrgID, m.UserID, m.Role))
	if err != nil {
		return model.Membership{}, fmt.Errorf("failed to create membership: %w", err)
	}
	return saved, nil
}

func (r *MembershipRepository) Get(ctx context.Context, orgID, userID uuid.UUID) (model.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE org_id = $1 AND user_id = $2`

	m, err := scanMembership(r.db.QueryRow(ctx, query, orgID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Membership{}, model.ErrNotFound
		}
		return model.Membership{}, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

func (r *MembershipRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]model.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE org_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var members []model.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return members, nil
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role model.Role) (model.Membership, error) {
	query := `UPDATE memberships SET role = $3, updated_at = NOW()
			  WHERE org_id = $1 AND user_id = $2
			  RETURNING ` + membershipColumns

	m, err := scanMembership(r.db.QueryRow(ctx, query, orgID, userID, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Membership{}, model.ErrNotFound
		}
		return model.Membership{}, fmt.Errorf("failed to update membership role: %w", err)
	}
	return m, nil
}

func (r *MembershipRepository) Delete(ctx context.Context, orgID, userID uuid.UUID) error {
	query := `DELETE FROM memberships WHERE org_id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, orgID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *MembershipRepository) CountByRole(ctx context.Context, orgID uuid.UUID, role model.Role) (int, error) {
	query := `SELECT COUNT(*) FROM memberships WHERE org_id = $1 AND role = $2`

	var count int
	if err := r.db.QueryRow(ctx, query, orgID, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count memberships by role: %w", err)
	}
	return count, nil
}
