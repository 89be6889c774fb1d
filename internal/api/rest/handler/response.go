package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orgdesk/orgdesk-server/internal/model"
	"github.com/orgdesk/orgdesk-server/internal/service"
)

// envelope is the uniform response body. Success responses carry data,
// failures carry an error message, never both.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondOK(c *gin.Context) {
	c.JSON(200, envelope{Success: true})
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	HasAvatar bool      `json:"hasAvatar"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role.String(),
		HasAvatar: u.AvatarKey != nil,
		CreatedAt: u.CreatedAt,
	}
}

type sessionResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         userResponse `json:"user"`
}

func toSessionResponse(r service.SessionResult) sessionResponse {
	return sessionResponse{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		User:         toUserResponse(r.User),
	}
}

type organizationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toOrganizationResponse(o model.Organization) organizationResponse {
	return organizationResponse{
		ID:          o.ID.String(),
		Name:        o.Name,
		Description: o.Description,
		CreatedAt:   o.CreatedAt,
	}
}

type memberResponse struct {
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

func toMemberResponse(m service.Member) memberResponse {
	return memberResponse{
		UserID:   m.User.ID.String(),
		Email:    m.User.Email,
		Name:     m.User.Name,
		Role:     m.Membership.Role.String(),
		JoinedAt: m.Membership.CreatedAt,
	}
}

type membershipResponse struct {
	OrgID  string `json:"orgId"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func toMembershipResponse(m model.Membership) membershipResponse {
	return membershipResponse{
		OrgID:  m.OrgID.String(),
		UserID: m.UserID.String(),
		Role:   m.Role.String(),
	}
}

type invitationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	Open      bool      `json:"open"`
}

func toInvitationResponse(inv model.Invitation, now time.Time) invitationResponse {
	return invitationResponse{
		ID:        inv.ID.String(),
		Email:     inv.Email,
		Role:      inv.Role.String(),
		ExpiresAt: inv.ExpiresAt,
		Open:      inv.Open(now),
	}
}

type auditEntryResponse struct {
	ID         string            `json:"id"`
	ActorID    *string           `json:"actorId,omitempty"`
	Action     string            `json:"action"`
	EntityType string            `json:"entityType,omitempty"`
	EntityID   string            `json:"entityId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	IP         string            `json:"ip,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func toAuditEntryResponse(e model.AuditEntry) auditEntryResponse {
	resp := auditEntryResponse{
		ID:         e.ID.String(),
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Metadata:   e.Metadata,
		IP:         e.IP,
		CreatedAt:  e.CreatedAt,
	}
	if e.ActorID != nil {
		actor := e.ActorID.String()
		resp.ActorID = &actor
	}
	return resp
}
