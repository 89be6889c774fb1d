package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/orgdesk/orgdesk-server/internal/apierrors"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
)

// Invitation manages organization invitations. Invitation tokens follow
// the same rule as refresh tokens: the raw value goes to the caller once,
// only its hash is stored. Delivery of the token (email) is outside this
// service.
type Invitation struct {
	invitations model.InvitationStore
	members     model.MembershipStore
	users       model.UserStore
	audit       model.AuditRecorder
	clock       model.Clock
	logger      *logger.Logger
	hash        func(raw string) []byte
}

func NewInvitation(
	invitations model.InvitationStore,
	members model.MembershipStore,
	users model.UserStore,
	audit model.AuditRecorder,
	clock model.Clock,
	logger *logger.Logger,
	hash func(raw string) []byte,
) *Invitation {
	return &Invitation{
		invitations: invitations,
		members:     members,
		users:       users,
		audit:       audit,
		clock:       clock,
		logger:      logger,
		hash:        hash,
	}
}

// InvitationResult carries the created invitation plus the raw token the
// invitee needs. The raw token is returned exactly once.
type InvitationResult struct {
	Invitation model.Invitation
	RawToken   string
}

// Create invites an email into the organization; admin or owner only.
// Owner invitations require an owner caller.
func (i *Invitation) Create(ctx context.Context, orgID, callerID uuid.UUID, email string, role model.Role, sourceIP string) (InvitationResult, error) {
	caller, err := i.members.Get(ctx, orgID, callerID)
	if err != nil {
		return InvitationResult{}, apierrors.NewForbidden()
	}
	if !caller.Role.AtLeast(model.RoleAdmin) {
		return InvitationResult{}, apierrors.NewForbidden()
	}
	if !role.Valid() {
		return InvitationResult{}, apierrors.NewBadRequest("unknown role")
	}
	if role == model.RoleOwner && caller.Role != model.RoleOwner {
		return InvitationResult{}, apierrors.NewForbidden()
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return InvitationResult{}, apierrors.NewBadRequest("valid email required")
	}

	raw, err := generateRefreshToken()
	if err != nil {
		return InvitationResult{}, fmt.Errorf("failed to generate invitation token: %w", err)
	}

	inv, err := i.invitations.Create(ctx, model.Invitation{
		OrgID:     orgID,
		Email:     email,
		Role:      role,
		TokenHash: i.hash(raw),
		InvitedBy: callerID,
		ExpiresAt: i.clock.Now().Add(model.InvitationDuration),
	})
	if err != nil {
		return InvitationResult{}, fmt.Errorf("failed to create invitation: %w", err)
	}

	i.audit.Record(ctx, model.AuditEntry{
		OrgID:      &orgID,
		ActorID:    &callerID,
		Action:     model.AuditInvitationCreated,
		EntityType: "invitation",
		EntityID:   inv.ID.String(),
		Metadata:   map[string]string{"email": email, "role": role.String()},
		IP:         sourceIP,
	})
	i.logger.Info("Invitation service: created", "org_id", orgID, "invitation_id", inv.ID)

	return InvitationResult{Invitation: inv, RawToken: raw}, nil
}

// List returns the organization's invitations; admin or owner only.
func (i *Invitation) List(ctx context.Context, orgID, callerID uuid.UUID) ([]model.Invitation, error) {
	caller, err := i.members.Get(ctx, orgID, callerID)
	if err != nil || !caller.Role.AtLeast(model.RoleAdmin) {
		return nil, apierrors.NewForbidden()
	}

	invs, err := i.invitations.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invs, nil
}

// Accept redeems an invitation token for the calling user and creates
// the membership. The invitation is single-use; the stored email must
// match the caller's.
func (i *Invitation) Accept(ctx context.Context, callerID uuid.UUID, rawToken, sourceIP string) (model.Membership, error) {
	if rawToken == "" {
		return model.Membership{}, apierrors.NewBadRequest("invitation token required")
	}

	inv, err := i.invitations.GetByHash(ctx, i.hash(rawToken))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Membership{}, apierrors.NewBadRequest("invitation not found")
		}
		return model.Membership{}, fmt.Errorf("failed to get invitation: %w", err)
	}
	if !inv.Open(i.clock.Now()) {
		return model.Membership{}, apierrors.NewBadRequest("invitation no longer valid")
	}

	user, err := i.users.GetByID(ctx, callerID)
	if err != nil {
		return model.Membership{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Email != inv.Email {
		return model.Membership{}, apierrors.NewForbidden()
	}

	// Consume first; only one accept can win.
	if err := i.invitations.Consume(ctx, inv.ID); err != nil {
		if errors.Is(err, model.ErrInvitationConsumed) {
			return model.Membership{}, apierrors.NewBadRequest("invitation no longer valid")
		}
		return model.Membership{}, fmt.Errorf("failed to consume invitation: %w", err)
	}

	m, err := i.members.Create(ctx, model.Membership{
		OrgID:  inv.OrgID,
		UserID: callerID,
		Role:   inv.Role,
	})
	if err != nil {
		return model.Membership{}, fmt.Errorf("failed to create membership: %w", err)
	}

	i.audit.Record(ctx, model.AuditEntry{
		OrgID:      &inv.OrgID,
		ActorID:    &callerID,
		Action:     model.AuditInvitationAccepted,
		EntityType: "invitation",
		EntityID:   inv.ID.String(),
		IP:         sourceIP,
	})
	i.logger.Info("Invitation service: accepted", "org_id", inv.OrgID, "user_id", callerID)

	return m, nil
}

// Revoke withdraws an open invitation; admin or owner only.
func (i *Invitation) Revoke(ctx context.Context, orgID, callerID, invitationID uuid.UUID, sourceIP string) error {
	caller, err := i.members.Get(ctx, orgID, callerID)
	if err != nil || !caller.Role.AtLeast(model.RoleAdmin) {
		return apierrors.NewForbidden()
	}

	if err := i.invitations.Revoke(ctx, invitationID); err != nil {
		if errors.Is(err, model.ErrInvitationConsumed) {
			return apierrors.NewBadRequest("invitation no longer valid")
		}
		return fmt.Errorf("failed to revoke invitation: %w", err)
	}

	i.audit.Record(ctx, model.AuditEntry{
		OrgID:      &orgID,
		ActorID:    &callerID,
		Action:     model.AuditInvitationRevoked,
		EntityType: "invitation",
		EntityID:   invitationID.String(),
		IP:         sourceIP,
	})
	return nil
}
