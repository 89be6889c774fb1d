package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/orgdesk/orgdesk-server/internal/apierrors"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
)

var _ model.AuditRecorder = (*Audit)(nil)

// Audit appends audit entries and serves per-organization audit queries.
// Recording is best-effort: a failed append is logged, never propagated,
// so audit hiccups cannot fail business operations.
type Audit struct {
	store   model.AuditStore
	members model.MembershipStore
	logger  *logger.Logger
}

func NewAudit(store model.AuditStore, members model.MembershipStore, logger *logger.Logger) *Audit {
	return &Audit{store: store, members: members, logger: logger}
}

// Record appends an entry, swallowing errors.
func (a *Audit) Record(ctx context.Context, entry model.AuditEntry) {
	if err := a.store.Append(ctx, entry); err != nil {
		a.logger.Error("Audit service: failed to append entry",
			"action", entry.Action,
			"error", err.Error())
	}
}

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

// ListByOrg returns audit entries for an organization. Only admins and
// owners of the organization may read its audit log.
func (a *Audit) ListByOrg(ctx context.Context, orgID, callerID uuid.UUID, limit, offset int) ([]model.AuditEntry, error) {
	m, err := a.members.Get(ctx, orgID, callerID)
	if err != nil {
		return nil, apierrors.NewForbidden()
	}
	if !m.Role.AtLeast(model.RoleAdmin) {
		return nil, apierrors.NewForbidden()
	}

	if limit <= 0 {
		limit = auditDefaultLimit
	}
	if limit > auditMaxLimit {
		limit = auditMaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := a.store.ListByOrg(ctx, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
