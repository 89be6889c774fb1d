package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

var _ model.AuditStore = (*AuditRepository)(nil)

type AuditRepository struct {
	db *Connection
}

func NewAuditRepository(db *Connection) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry model.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (id, org_id, actor_id, action, entity_type, entity_id, metadata, ip, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
    `

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]string{}
	}
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		entry.ID, entry.OrgID, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID,
		metadata, entry.IP,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]model.AuditEntry, error) {
	const query = `
        SELECT id, org_id, actor_id, action, entity_type, entity_id, metadata, ip, created_at
        FROM audit_log WHERE org_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `

	rows, err := r.db.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		var metadata []byte
		err := rows.Scan(
			&entry.ID, &entry.OrgID, &entry.ActorID, &entry.Action, &entry.EntityType,
			&entry.EntityID, &metadata, &entry.IP, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}
