package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/utils/errutil"
)

type AuditUseCase struct {
	repo interfaces.Repository
}

func NewAuditUseCase(repo interfaces.Repository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// List returns the newest audit entries of an entity with user names joined
func (uc *AuditUseCase) List(ctx context.Context, entityType types.EntityType, entityID string, limit int) ([]*model.AuditLog, error) {
	if !entityType.IsValid() {
		return nil, goerr.Wrap(model.ErrInvalidValue, "invalid entity type",
			goerr.V(model.FieldKey, "entity_type"), goerr.V(model.FieldValueKey, entityType))
	}

	logs, err := uc.repo.Audit().List(ctx, entityType, entityID, model.ClampAuditLimit(limit))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit logs",
			goerr.V("entity_type", entityType), goerr.V("entity_id", entityID))
	}

	names, err := userNames(ctx, uc.repo)
	if err != nil {
		return nil, err
	}
	for _, l := range logs {
		l.UserName = names[l.UserID]
	}
	return logs, nil
}

// recordAudit stores an audit entry. The audited write has already
// succeeded, so a failure here is reported and not returned.
func recordAudit(ctx context.Context, repo interfaces.Repository, now time.Time, entityType types.EntityType, entityID string, action types.AuditAction, changes map[string]any) {
	entry := &model.AuditLog{
		ID:         types.NewAuditLogID(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    changes,
		UserID:     actor(ctx),
		CreatedAt:  now,
	}
	if err := repo.Audit().Put(ctx, entry); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to write audit log",
			goerr.V("entity_type", entityType),
			goerr.V("entity_id", entityID),
			goerr.V("action", action)), "audit log lost")
	}
}

func userNames(ctx context.Context, repo interfaces.Repository) (map[types.UserID]string, error) {
	users, err := repo.User().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	names := make(map[types.UserID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}
