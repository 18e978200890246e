package interfaces

import (
	"context"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type AuditRepository interface {
	Put(ctx context.Context, log *model.AuditLog) error

	// List returns up to limit entries for an entity, newest first
	List(ctx context.Context, entityType types.EntityType, entityID string, limit int) ([]*model.AuditLog, error)
}
