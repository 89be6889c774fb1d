package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by services. Security-relevant auth events carry
// a nil OrgID.
const (
	AuditLogin              = "auth.login"
	AuditLoginLocked        = "auth.login_locked"
	AuditLogout             = "auth.logout"
	AuditLogoutAll          = "auth.logout_all"
	AuditTokenReplay        = "auth.token_replay"
	AuditPasswordChanged    = "auth.password_changed"
	AuditOrgCreated         = "org.created"
	AuditOrgUpdated         = "org.updated"
	AuditOrgDeleted         = "org.deleted"
	AuditMemberRoleChanged  = "org.member_role_changed"
	AuditMemberRemoved      = "org.member_removed"
	AuditInvitationCreated  = "org.invitation_created"
	AuditInvitationAccepted = "org.invitation_accepted"
	AuditInvitationRevoked  = "org.invitation_revoked"
)

// AuditStore persists audit entries.
type AuditStore interface {
	Append(ctx context.Context, entry AuditEntry) error
	ListByOrg(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]AuditEntry, error)
}

// AuditRecorder is the write-only view services use. Recording is
// best-effort; a failed append never fails the business operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry is one immutable audit-log row.
type AuditEntry struct {
	ID         uuid.UUID
	OrgID      *uuid.UUID
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]string
	IP         string
	CreatedAt  time.Time
}
