package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvitationDuration is how long an invitation token stays valid.
const InvitationDuration = 72 * time.Hour

// InvitationStore persists organization invitations. As with refresh
// tokens, only the hash of the invitation token is stored.
type InvitationStore interface {
	Create(ctx context.Context, inv Invitation) (Invitation, error)
	GetByHash(ctx context.Context, hash []byte) (Invitation, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]Invitation, error)
	// Consume marks the invitation accepted iff it is still open.
	// Returns ErrInvitationConsumed when it was already used or revoked.
	Consume(ctx context.Context, id uuid.UUID) error
	Revoke(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Invitation invites an email address into an organization with a role.
type Invitation struct {
	ID         uuid.UUID
	OrgID      uuid.UUID
	Email      string
	Role       Role
	TokenHash  []byte
	InvitedBy  uuid.UUID
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// Open reports whether the invitation can still be accepted.
func (i Invitation) Open(now time.Time) bool {
	return i.AcceptedAt == nil && i.RevokedAt == nil && now.Before(i.ExpiresAt)
}
