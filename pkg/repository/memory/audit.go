package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type auditKey struct {
	entityType types.EntityType
	entityID   string
}

type auditRepository struct {
	mu   sync.RWMutex
	logs map[auditKey][]*model.AuditLog
}

func newAuditRepository() *auditRepository {
	return &auditRepository{
		logs: make(map[auditKey][]*model.AuditLog),
	}
}

func copyAuditLog(l *model.AuditLog) *model.AuditLog {
	c := *l
	c.Changes = maps.Clone(l.Changes)
	return &c
}

func (r *auditRepository) Put(ctx context.Context, log *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := auditKey{entityType: log.EntityType, entityID: log.EntityID}
	r.logs[key] = append(r.logs[key], copyAuditLog(log))
	return nil
}

func (r *auditRepository) List(ctx context.Context, entityType types.EntityType, entityID string, limit int) ([]*model.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.logs[auditKey{entityType: entityType, entityID: entityID}]
	result := make([]*model.AuditLog, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		result = append(result, copyAuditLog(entries[i]))
	}

	// newest first; entries with equal timestamps keep reverse insertion order
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
