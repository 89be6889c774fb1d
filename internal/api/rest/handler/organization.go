package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orgdesk/orgdesk-server/internal/api/rest/identity"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
	"github.com/orgdesk/orgdesk-server/internal/service"
)

// OrganizationService defines tenant and membership operations.
type OrganizationService interface {
	Create(ctx context.Context, callerID uuid.UUID, name, description, sourceIP string) (model.Organization, error)
	ListForUser(ctx context.Context, callerID uuid.UUID) ([]model.Organization, error)
	Get(ctx context.Context, orgID, callerID uuid.UUID) (model.Organization, error)
	Update(ctx context.Context, orgID, callerID uuid.UUID, name, description, sourceIP string) (model.Organization, error)
	Delete(ctx context.Context, orgID, callerID uuid.UUID, sourceIP string) error
	ListMembers(ctx context.Context, orgID, callerID uuid.UUID) ([]service.Member, error)
	ChangeMemberRole(ctx context.Context, orgID, callerID, userID uuid.UUID, role model.Role, sourceIP string) (model.Membership, error)
	RemoveMember(ctx context.Context, orgID, callerID, userID uuid.UUID, sourceIP string) error
}

// Organization handles the /api/orgs endpoints.
type Organization struct {
	orgs   OrganizationService
	logger *logger.Logger
}

func NewOrganization(orgs OrganizationService, logger *logger.Logger) *Organization {
	return &Organization{orgs: orgs, logger: logger}
}

// caller returns the authenticated identity or writes a 401.
func caller(c *gin.Context) (model.Identity, bool) {
	id, ok := identity.From(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Error: "authentication required"})
	}
	return id, ok
}

// pathUUID parses a UUID path parameter or writes a 400.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, envelope{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Organization) Create(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "name required"})
		return
	}

	org, err := h.orgs.Create(c.Request.Context(), id.UserID, req.Name, req.Description, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusCreated, toOrganizationResponse(org))
}

func (h *Organization) List(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	orgs, err := h.orgs.ListForUser(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]organizationResponse, 0, len(orgs))
	for _, org := range orgs {
		resp = append(resp, toOrganizationResponse(org))
	}
	respondData(c, http.StatusOK, resp)
}

func (h *Organization) Get(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orgID, ok := pathUUID(c, "orgID")
	if !ok {
		return
	}

	org, err := h.orgs.Get(c.Request.Context(), orgID, id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, toOrganizationResponse(org))
}

func (h *Organization) Update(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orgID, ok := pathUUID(c, "orgID")
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "name required"})
		return
	}

	org, err := h.orgs.Update(c.Request.Context(), orgID, id.UserID, req.Name, req.Description, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, toOrganizationResponse(org))
}

func (h *Organization) Delete(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orgID, ok := pathUUID(c, "orgID")
	if !ok {
		return
	}

	if err := h.orgs.Delete(c.Request.Context(), orgID, id.UserID, c.ClientIP()); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c)
}

func (h *Organization) ListMembers(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orgID, ok := pathUUID(c, "orgID")
	if !ok {
		return
	}

	members, err := h.orgs.ListMembers(c.Request.Context(), orgID, id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]memberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, toMemberResponse(m))
	}
	respondData(c, http.StatusOK, resp)
}

func (h *Organization) ChangeMemberRole(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orgID, ok := pathUUID(c, "orgID")
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "userID")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "role required"})
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "unknown role"})
		return
	}

	m, err := h.orgs.ChangeMemberRole(c.Request.Context(), orgID, id.UserID, userID, role, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, toMembershipResponse(m))
}

func (h *Organization) RemoveMember(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orgID, ok := pathUUID(c, "orgID")
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "userID")
	if !ok {
		return
	}

	if err := h.orgs.RemoveMember(c.Request.Context(), orgID, id.UserID, userID, c.ClientIP()); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c)
}
