package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

var _ model.InvitationStore = (*InvitationRepository)(nil)

type InvitationRepository struct {
	db *Connection
}

func NewInvitationRepository(db *Connection) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = `id, org_id, email, role, token_hash, invited_by, expires_at, accepted_at, revoked_at, created_at`

func scanInvitation(row pgx.Row) (model.Invitation, error) {
	var inv model.Invitation
	err := row.Scan(
		&inv.ID, &inv.OrgID, &inv.Email, &inv.Role, &inv.TokenHash, &inv.InvitedBy,
		&inv.ExpiresAt, &inv.AcceptedAt, &inv.RevokedAt, &inv.CreatedAt,
	)
	return inv, err
}

func (r *InvitationRepository) Create(ctx context.Context, inv model.Invitation) (model.Invitation, error) {
	query := `INSERT INTO invitations (id, org_id, email, role, token_hash, invited_by, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			  RETURNING ` + invitationColumns

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}

	saved, err := scanInvitation(r.db.QueryRow(ctx, query,
		inv.ID, inv.OrgID, strings.ToLower(inv.Email), inv.Role, inv.TokenHash, inv.InvitedBy, inv.ExpiresAt,
	))
	if err != nil {
		return model.Invitation{}, fmt.Errorf("failed to create invitation: %w", err)
	}
	return saved, nil
}

func (r *InvitationRepository) GetByHash(ctx context.Context, hash []byte) (model.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token_hash = $1`

	inv, err := scanInvitation(r.db.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Invitation{}, model.ErrNotFound
		}
		return model.Invitation{}, fmt.Errorf("failed to get invitation by hash: %w", err)
	}
	return inv, nil
}

func (r *InvitationRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]model.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE org_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invs []model.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}
	return invs, nil
}

// Consume marks the invitation accepted. The update is conditional on
// the invitation still being open, so a token can be redeemed once.
func (r *InvitationRepository) Consume(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE invitations SET accepted_at = NOW()
			  WHERE id = $1 AND accepted_at IS NULL AND revoked_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to consume invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrInvitationConsumed
	}
	return nil
}

func (r *InvitationRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE invitations SET revoked_at = NOW()
			  WHERE id = $1 AND accepted_at IS NULL AND revoked_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to revoke invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrInvitationConsumed
	}
	return nil
}

func (r *InvitationRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM invitations WHERE expires_at < $1`

	tag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invitations: %w", err)
	}
	return tag.RowsAffected(), nil
}
