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

// Organization manages tenants and their memberships. Every mutating
// operation checks the caller's membership role; the allowed set is
// always an explicit allow-list.
type Organization struct {
	orgs    model.OrganizationStore
	members model.MembershipStore
	users   model.UserStore
	audit   model.AuditRecorder
	logger  *logger.Logger
}

func NewOrganization(
	orgs model.OrganizationStore,
	members model.MembershipStore,
	users model.UserStore,
	audit model.AuditRecorder,
	logger *logger.Logger,
) *Organization {
	return &Organization{
		orgs:    orgs,
		members: members,
		users:   users,
		audit:   audit,
		logger:  logger,
	}
}

// Member is a membership joined with the user it belongs to.
type Member struct {
	Membership model.Membership
	User       model.User
}

// Create creates an organization and makes the creator its owner.
func (o *Organization) Create(ctx context.Context, callerID uuid.UUID, name, description, sourceIP string) (model.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Organization{}, apierrors.NewBadRequest("organization name required")
	}

	org, err := o.orgs.Create(ctx, model.Organization{Name: name, Description: description})
	if err != nil {
		return model.Organization{}, fmt.Errorf("failed to create organization: %w", err)
	}

	if _, err := o.members.Create(ctx, model.Membership{
		OrgID:  org.ID,
		UserID: callerID,
		Role:   model.RoleOwner,
	}); err != nil {
		return model.Organization{}, fmt.Errorf("failed to create owner membership: %w", err)
	}

	o.audit.Record(ctx, model.AuditEntry{
		OrgID:      &org.ID,
		ActorID:    &callerID,
		Action:     model.AuditOrgCreated,
		EntityType: "organization",
		EntityID:   org.ID.String(),
		Metadata:   map[string]string{"name": org.Name},
		IP:         sourceIP,
	})
	o.logger.Info("Organization service: created", "org_id", org.ID, "user_id", callerID)

	return org, nil
}

// ListForUser returns the organizations the caller belongs to.
func (o *Organization) ListForUser(ctx context.Context, callerID uuid.UUID) ([]model.Organization, error) {
	orgs, err := o.orgs.GetByMember(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

// Get returns one organization; the caller must be a member.
func (o *Organization) Get(ctx context.Context, orgID, callerID uuid.UUID) (model.Organization, error) {
	if _, err := o.requireRole(ctx, orgID, callerID, model.RoleMember); err != nil {
		return model.Organization{}, err
	}
	org, err := o.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Organization{}, model.ErrNotFound
		}
		return model.Organization{}, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// Update changes name/description; admin or owner only.
func (o *Organization) Update(ctx context.Context, orgID, callerID uuid.UUID, name, description, sourceIP string) (model.Organization, error) {
	if _, err := o.requireRole(ctx, orgID, callerID, model.RoleAdmin); err != nil {
		return model.Organization{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return model.Organization{}, apierrors.NewBadRequest("organization name required")
	}

	org, err := o.orgs.Update(ctx, model.Organization{ID: orgID, Name: name, Description: description})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Organization{}, model.ErrNotFound
		}
		return model.Organization{}, fmt.Errorf("failed to update organization: %w", err)
	}

	o.audit.Record(ctx, model.AuditEntry{
		OrgID:      &orgID,
		ActorID:    &callerID,
		Action:     model.AuditOrgUpdated,
		EntityType: "organization",
		EntityID:   orgID.String(),
		IP:         sourceIP,
	})
	return org, nil
}

// Delete soft-deletes the organization; owners only.
func (o *Organization) Delete(ctx context.Context, orgID, callerID uuid.UUID, sourceIP string) error {
	if _, err := o.requireRole(ctx, orgID, callerID, model.RoleOwner); err != nil {
		return err
	}

	if err := o.orgs.SoftDelete(ctx, orgID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	o.audit.Record(ctx, model.AuditEntry{
		OrgID:      &orgID,
		ActorID:    &callerID,
		Action:     model.AuditOrgDeleted,
		EntityType: "organization",
		EntityID:   orgID.String(),
		IP:         sourceIP,
	})
	o.logger.Info("Organization service: deleted", "org_id", orgID, "user_id", callerID)
	return nil
}

// ListMembers returns members with user details; members only.
func (o *Organization) ListMembers(ctx context.Context, orgID, callerID uuid.UUID) ([]Member, error) {
	if _, err := o.requireRole(ctx, orgID, callerID, model.RoleMember); err != nil {
		return nil, err
	}

	memberships, err := o.members.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	members := make([]Member, 0, len(memberships))
	for _, m := range memberships {
		user, err := o.users.GetByID(ctx, m.UserID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get member user: %w", err)
		}
		members = append(members, Member{Membership: m, User: user})
	}
	return members, nil
}

// ChangeMemberRole sets a member's role; admin or owner only. Demoting
// the last owner is refused so the organization never ends up ownerless.
func (o *Organization) ChangeMemberRole(ctx context.Context, orgID, callerID, userID uuid.UUID, role model.Role, sourceIP string) (model.Membership, error) {
	if !role.Valid() {
		return model.Membership{}, apierrors.NewBadRequest("unknown role")
	}
	caller, err := o.requireRole(ctx, orgID, callerID, model.RoleAdmin)
	if err != nil {
		return model.Membership{}, err
	}
	// Only owners may grant or take away ownership.
	if role == model.RoleOwner && caller.Role != model.RoleOwner {
		return model.Membership{}, apierrors.NewForbidden()
	}

	target, err := o.members.Get(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Membership{}, model.ErrNotFound
		}
		return model.Membership{}, fmt.Errorf("failed to get membership: %w", err)
	}
	if target.Role == model.RoleOwner && role != model.RoleOwner {
		if err := o.ensureNotLastOwner(ctx, orgID); err != nil {
			return model.Membership{}, err
		}
		if caller.Role != model.RoleOwner {
			return model.Membership{}, apierrors.NewForbidden()
		}
	}

	m, err := o.members.UpdateRole(ctx, orgID, userID, role)
	if err != nil {
		return model.Membership{}, fmt.Errorf("failed to update member role: %w", err)
	}

	o.audit.Record(ctx, model.AuditEntry{
		OrgID:      &orgID,
		ActorID:    &callerID,
		Action:     model.AuditMemberRoleChanged,
		EntityType: "membership",
		EntityID:   userID.String(),
		Metadata:   map[string]string{"role": role.String()},
		IP:         sourceIP,
	})
	return m, nil
}

// RemoveMember removes a member; admins and owners can remove others,
// anyone can remove themselves. The last owner cannot leave.
func (o *Organization) RemoveMember(ctx context.Context, orgID, callerID, userID uuid.UUID, sourceIP string) error {
	if callerID != userID {
		if _, err := o.requireRole(ctx, orgID, callerID, model.RoleAdmin); err != nil {
			return err
		}
	}

	target, err := o.members.Get(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to get membership: %w", err)
	}
	if target.Role == model.RoleOwner {
		if err := o.ensureNotLastOwner(ctx, orgID); err != nil {
			return err
		}
	}

	if err := o.members.Delete(ctx, orgID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	o.audit.Record(ctx, model.AuditEntry{
		OrgID:      &orgID,
		ActorID:    &callerID,
		Action:     model.AuditMemberRemoved,
		EntityType: "membership",
		EntityID:   userID.String(),
		IP:         sourceIP,
	})
	return nil
}

// requireRole loads the caller's membership and denies unless it grants
// at least the wanted role. A missing membership is a plain forbidden;
// the response does not reveal whether the organization exists.
func (o *Organization) requireRole(ctx context.Context, orgID, callerID uuid.UUID, want model.Role) (model.Membership, error) {
	m, err := o.members.Get(ctx, orgID, callerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Membership{}, apierrors.NewForbidden()
		}
		return model.Membership{}, fmt.Errorf("failed to get membership: %w", err)
	}
	if !m.Role.AtLeast(want) {
		return model.Membership{}, apierrors.NewForbidden()
	}
	return m, nil
}

func (o *Organization) ensureNotLastOwner(ctx context.Context, orgID uuid.UUID) error {
	owners, err := o.members.CountByRole(ctx, orgID, model.RoleOwner)
	if err != nil {
		return fmt.Errorf("failed to count owners: %w", err)
	}
	if owners <= 1 {
		return model.ErrLastOwner
	}
	return nil
}
