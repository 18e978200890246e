package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

func TestMitigationUseCase(t *testing.T) {
	t.Run("create defaults to planned", func(t *testing.T) {
		f := newFixture(t)
		ctx := adminCtx()
		risk := f.createRisk(t, "x", types.RiskStatusOpen)

		m, err := f.uc.Mitigation.CreateMitigation(ctx, risk.ID, usecase.CreateMitigationInput{
			Description: "Rotate keys",
			Owner:       "platform",
			DueDate:     "2025-06-30",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, m.Status).Equal(types.MitigationStatusPlanned)
		gt.Value(t, m.RiskID).Equal(risk.ID)
		gt.Value(t, m.DueDate).NotNil()

		list, err := f.uc.Mitigation.ListMitigations(ctx, risk.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)

		logs, err := f.repo.Audit().List(ctx, types.EntityTypeMitigation, m.ID.String(), 10)
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(1)
	})

	t.Run("description and owner are required", func(t *testing.T) {
		f := newFixture(t)
		risk := f.createRisk(t, "x", types.RiskStatusOpen)

		_, err := f.uc.Mitigation.CreateMitigation(adminCtx(), risk.ID, usecase.CreateMitigationInput{Owner: "ops"})
		gt.Error(t, err).Is(model.ErrMissingRequired)
		_, err = f.uc.Mitigation.CreateMitigation(adminCtx(), risk.ID, usecase.CreateMitigationInput{Description: "d"})
		gt.Error(t, err).Is(model.ErrMissingRequired)
	})

	t.Run("unknown risk", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Mitigation.CreateMitigation(adminCtx(), "missing", usecase.CreateMitigationInput{Description: "d", Owner: "o"})
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
		_, err = f.uc.Mitigation.ListMitigations(adminCtx(), "missing")
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})

	t.Run("update and delete", func(t *testing.T) {
		f := newFixture(t)
		ctx := adminCtx()
		risk := f.createRisk(t, "x", types.RiskStatusOpen)
		m, err := f.uc.Mitigation.CreateMitigation(ctx, risk.ID, usecase.CreateMitigationInput{Description: "d", Owner: "o"})
		gt.NoError(t, err).Required()

		updated, err := f.uc.Mitigation.UpdateMitigation(ctx, m.ID, usecase.UpdateMitigationInput{
			Status: ptr(types.MitigationStatusCompleted),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.MitigationStatusCompleted)
		gt.Value(t, updated.Description).Equal("d")

		_, err = f.uc.Mitigation.UpdateMitigation(ctx, m.ID, usecase.UpdateMitigationInput{
			Status: ptr(types.MitigationStatus("done")),
		})
		gt.Error(t, err).Is(model.ErrInvalidValue)

		gt.NoError(t, f.uc.Mitigation.DeleteMitigation(ctx, m.ID)).Required()
		_, err = f.uc.Mitigation.GetMitigation(ctx, m.ID)
		gt.Error(t, err).Is(usecase.ErrMitigationNotFound)

		logs, err := f.repo.Audit().List(ctx, types.EntityTypeMitigation, m.ID.String(), 10)
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(3).Required()
		gt.Value(t, logs[0].Action).Equal(types.AuditActionDeleted)
	})
}
