package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
	"github.com/orgdesk/orgdesk-server/internal/service"
)

// InvitationService defines invitation lifecycle operations.
type InvitationService interface {
	Create(ctx context.Context, orgID, callerID uuid.UUID, email string, role model.Role, sourceIP string) (service.InvitationResult, error)
	List(ctx context.Context, orgID, callerID uuid.UUID) ([]model.Invitation, error)
	Accept(ctx context.Context, callerID uuid.UUID, rawToken, sourceIP string) (model.Membership, error)
	Revoke(ctx context.Context, orgID, callerID, invitationID uuid.UUID, sourceIP string) error
}

// Invitation handles invitation endpoints.
type Invitation struct {
	invitations InvitationService
	clock       model.Clock
	logger      *logger.Logger
}

func NewInvitation(invitations InvitationService, clock model.Clock, logger *logger.Logger) *Invitation {
	return &Invitation{invitations: invitations, clock: clock, logger: logger}
}

// Create issues an invitation. The raw token is returned exactly once;
// delivering it to the invitee is the caller's responsibility.
func (h *Invitation) Create(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orgID, ok := pathUUID(c, "orgID")
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email" binding:"required"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "email and role required"})
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "unknown role"})
		return
	}

	result, err := h.invitations.Create(c.Request.Context(), orgID, id.UserID, req.Email, role, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := struct {
		invitationResponse
		Token string `json:"token"`
	}{
		invitationResponse: toInvitationResponse(result.Invitation, h.clock.Now()),
		Token:              result.RawToken,
	}
	respondData(c, http.StatusCreated, resp)
}

func (h *Invitation) List(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orgID, ok := pathUUID(c, "orgID")
	if !ok {
		return
	}

	invs, err := h.invitations.List(c.Request.Context(), orgID, id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	now := h.clock.Now()
	resp := make([]invitationResponse, 0, len(invs))
	for _, inv := range invs {
		resp = append(resp, toInvitationResponse(inv, now))
	}
	respondData(c, http.StatusOK, resp)
}

// Accept redeems an invitation token for the authenticated user.
func (h *Invitation) Accept(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "token required"})
		return
	}

	m, err := h.invitations.Accept(c.Request.Context(), id.UserID, req.Token, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, toMembershipResponse(m))
}

func (h *Invitation) Revoke(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orgID, ok := pathUUID(c, "orgID")
	if !ok {
		return
	}
	invitationID, ok := pathUUID(c, "invitationID")
	if !ok {
		return
	}

	if err := h.invitations.Revoke(c.Request.Context(), orgID, id.UserID, invitationID, c.ClientIP()); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c)
}
