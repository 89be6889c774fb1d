package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrganizationStore defines persistence operations for organizations.
type OrganizationStore interface {
	Create(ctx context.Context, org Organization) (Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (Organization, error)
	GetByMember(ctx context.Context, userID uuid.UUID) ([]Organization, error)
	Update(ctx context.Context, org Organization) (Organization, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Organization is a tenant. All membership, invitation and audit data
// hangs off its ID.
type Organization struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// MembershipStore defines persistence operations for org memberships.
type MembershipStore interface {
	Create(ctx context.Context, m Membership) (Membership, error)
	Get(ctx context.Context, orgID, userID uuid.UUID) (Membership, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]Membership, error)
	UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role Role) (Membership, error)
	Delete(ctx context.Context, orgID, userID uuid.UUID) error
	CountByRole(ctx context.Context, orgID uuid.UUID, role Role) (int, error)
}

// Membership ties a user to an organization with a role.
type Membership struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	UserID    uuid.UUID
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
