package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type auditRepository struct {
	db *sql.DB
}

func (r *auditRepository) Put(ctx context.Context, log *model.AuditLog) error {
	var changes []byte
	if log.Changes != nil {
		raw, err := json.Marshal(log.Changes)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal audit changes", goerr.V("id", log.ID))
		}
		changes = raw
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, entity_type, entity_id, action, changes, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.EntityType, log.EntityID, log.Action, changes, log.UserID, log.CreatedAt)
	if err != nil {
		return goerr.Wrap(err, "failed to put audit log", goerr.V("id", log.ID))
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, entityType types.EntityType, entityID string, limit int) ([]*model.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entity_type, entity_id, action, changes, user_id, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, entityType, entityID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query audit logs",
			goerr.V("entity_type", entityType), goerr.V("entity_id", entityID))
	}
	defer rows.Close()

	result := []*model.AuditLog{}
	for rows.Next() {
		var (
			l       model.AuditLog
			changes []byte
		)
		if err := rows.Scan(&l.ID, &l.EntityType, &l.EntityID, &l.Action, &changes, &l.UserID, &l.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan audit log")
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &l.Changes); err != nil {
				return nil, goerr.Wrap(err, "failed to unmarshal audit changes", goerr.V("id", l.ID))
			}
		}
		result = append(result, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate audit logs")
	}
	return result, nil
}
