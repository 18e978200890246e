package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type auditDocument struct {
	ID         string         `firestore:"id"`
	EntityType string         `firestore:"entity_type"`
	EntityID   string         `firestore:"entity_id"`
	Action     string         `firestore:"action"`
	Changes    map[string]any `firestore:"changes"`
	UserID     string         `firestore:"user_id"`
	CreatedAt  time.Time      `firestore:"created_at"`
}

type auditRepository struct {
	*base
}

func (r *auditRepository) Put(ctx context.Context, log *model.AuditLog) error {
	d := &auditDocument{
		ID:         string(log.ID),
		EntityType: string(log.EntityType),
		EntityID:   log.EntityID,
		Action:     string(log.Action),
		Changes:    log.Changes,
		UserID:     log.UserID.String(),
		CreatedAt:  log.CreatedAt,
	}
	if _, err := r.collection(CollectionAuditLogs).Doc(d.ID).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put audit log", goerr.V("id", log.ID))
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, entityType types.EntityType, entityID string, limit int) ([]*model.AuditLog, error) {
	q := r.collection(CollectionAuditLogs).
		Where("entity_type", "==", string(entityType)).
		Where("entity_id", "==", entityID).
		OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	result := []*model.AuditLog{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate audit logs",
				goerr.V("entity_type", entityType), goerr.V("entity_id", entityID))
		}

		var d auditDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal audit log", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, &model.AuditLog{
			ID:         types.AuditLogID(d.ID),
			EntityType: types.EntityType(d.EntityType),
			EntityID:   d.EntityID,
			Action:     types.AuditAction(d.Action),
			Changes:    d.Changes,
			UserID:     types.UserID(d.UserID),
			CreatedAt:  d.CreatedAt,
		})
	}
	return result, nil
}
