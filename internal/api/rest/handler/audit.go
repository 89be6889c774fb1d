package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
)

// AuditService defines audit log queries.
type AuditService interface {
	ListByOrg(ctx context.Context, orgID, callerID uuid.UUID, limit, offset int) ([]model.AuditEntry, error)
}

// Audit handles the per-organization audit log endpoint.
type Audit struct {
	audit  AuditService
	logger *logger.Logger
}

func NewAudit(audit AuditService, logger *logger.Logger) *Audit {
	return &Audit{audit: audit, logger: logger}
}

// List returns the organization's audit entries, newest first.
func (h *Audit) List(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orgID, ok := pathUUID(c, "orgID")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.audit.ListByOrg(c.Request.Context(), orgID, id.UserID, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toAuditEntryResponse(e))
	}
	respondData(c, http.StatusOK, resp)
}
