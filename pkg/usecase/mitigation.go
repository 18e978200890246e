package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type MitigationUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func NewMitigationUseCase(repo interfaces.Repository, now func() time.Time) *MitigationUseCase {
	if now == nil {
		now = time.Now
	}
	return &MitigationUseCase{repo: repo, now: now}
}

type CreateMitigationInput struct {
	Description string
	Owner       string
	Status      types.MitigationStatus
	DueDate     string
}

// UpdateMitigationInput changes only the non-nil fields. An empty DueDate
// clears the value.
type UpdateMitigationInput struct {
	Description *string
	Owner       *string
	Status      *types.MitigationStatus
	DueDate     *string
}

func (uc *MitigationUseCase) CreateMitigation(ctx context.Context, riskID types.RiskID, input CreateMitigationInput) (*model.Mitigation, error) {
	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return nil, lookupErr(err, ErrRiskNotFound, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}

	dueDate, err := model.ParseDate(input.DueDate)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid due date", goerr.V(model.FieldKey, "due_date"))
	}

	now := uc.now()
	m := &model.Mitigation{
		ID:          types.NewMitigationID(),
		RiskID:      riskID,
		Description: input.Description,
		Owner:       input.Owner,
		Status:      input.Status,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actor(ctx),
		UpdatedBy:   actor(ctx),
	}
	if m.Status == "" {
		m.Status = types.MitigationStatusPlanned
	}
	if err := m.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid mitigation", goerr.V(RiskIDKey, riskID))
	}

	created, err := uc.repo.Mitigation().Create(ctx, m)
	if err != nil {
		return nil, lookupErr(err, ErrRiskNotFound, "failed to create mitigation", goerr.V(RiskIDKey, riskID))
	}

	recordAudit(ctx, uc.repo, now, types.EntityTypeMitigation, created.ID.String(), types.AuditActionCreated, map[string]any{
		"risk_id":     created.RiskID,
		"description": created.Description,
		"status":      created.Status,
	})
	return created, nil
}

func (uc *MitigationUseCase) ListMitigations(ctx context.Context, riskID types.RiskID) ([]*model.Mitigation, error) {
	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return nil, lookupErr(err, ErrRiskNotFound, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}

	mitigations, err := uc.repo.Mitigation().ListByRisk(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list mitigations", goerr.V(RiskIDKey, riskID))
	}
	return mitigations, nil
}

func (uc *MitigationUseCase) GetMitigation(ctx context.Context, id types.MitigationID) (*model.Mitigation, error) {
	m, err := uc.repo.Mitigation().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrMitigationNotFound, "failed to get mitigation", goerr.V(MitigationIDKey, id))
	}
	return m, nil
}

func (uc *MitigationUseCase) UpdateMitigation(ctx context.Context, id types.MitigationID, input UpdateMitigationInput) (*model.Mitigation, error) {
	existing, err := uc.repo.Mitigation().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrMitigationNotFound, "failed to get mitigation", goerr.V(MitigationIDKey, id))
	}

	updated := existing.Copy()
	if input.Description != nil {
		updated.Description = *input.Description
	}
	if input.Owner != nil {
		updated.Owner = *input.Owner
	}
	if input.Status != nil {
		updated.Status = *input.Status
	}
	if input.DueDate != nil {
		d, err := model.ParseDate(*input.DueDate)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid due date", goerr.V(model.FieldKey, "due_date"))
		}
		updated.DueDate = d
	}
	if err := updated.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid mitigation", goerr.V(MitigationIDKey, id))
	}

	changes := mitigationChanges(existing, updated)
	if len(changes) == 0 {
		return existing, nil
	}

	updated.UpdatedAt = uc.now()
	updated.UpdatedBy = actor(ctx)
	saved, err := uc.repo.Mitigation().Update(ctx, updated)
	if err != nil {
		return nil, lookupErr(err, ErrMitigationNotFound, "failed to update mitigation", goerr.V(MitigationIDKey, id))
	}

	recordAudit(ctx, uc.repo, updated.UpdatedAt, types.EntityTypeMitigation, id.String(), types.AuditActionUpdated, changes)
	return saved, nil
}

func (uc *MitigationUseCase) DeleteMitigation(ctx context.Context, id types.MitigationID) error {
	existing, err := uc.repo.Mitigation().Get(ctx, id)
	if err != nil {
		return lookupErr(err, ErrMitigationNotFound, "failed to get mitigation", goerr.V(MitigationIDKey, id))
	}
	if err := uc.repo.Mitigation().Delete(ctx, id); err != nil {
		return lookupErr(err, ErrMitigationNotFound, "failed to delete mitigation", goerr.V(MitigationIDKey, id))
	}

	recordAudit(ctx, uc.repo, uc.now(), types.EntityTypeMitigation, id.String(), types.AuditActionDeleted, map[string]any{
		"risk_id":     existing.RiskID,
		"description": existing.Description,
	})
	return nil
}

func mitigationChanges(before, after *model.Mitigation) map[string]any {
	changes := map[string]any{}
	if before.Description != after.Description {
		changes["description"] = model.Change(before.Description, after.Description)
	}
	if before.Owner != after.Owner {
		changes["owner"] = model.Change(before.Owner, after.Owner)
	}
	if before.Status != after.Status {
		changes["status"] = model.Change(before.Status, after.Status)
	}
	if fromDate, toDate := formatDate(before.DueDate), formatDate(after.DueDate); fromDate != toDate {
		changes["due_date"] = model.Change(fromDate, toDate)
	}
	return changes
}
