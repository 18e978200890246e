package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

func TestAuditUseCase_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.repo.User().Create(ctx, &model.User{
		ID: "admin-1", Email: "admin@example.com", Name: "Alice Admin", Role: types.UserRoleAdmin,
	})
	gt.NoError(t, err).Required()

	risk := f.createRisk(t, "x", types.RiskStatusOpen)
	for _, s := range []types.RiskStatus{types.RiskStatusMitigating, types.RiskStatusResolved} {
		gt.NoError(t, f.uc.Risk.UpdateStatus(adminCtx(), risk.ID, s)).Required()
	}

	t.Run("newest first with user names", func(t *testing.T) {
		logs, err := f.uc.Audit.List(ctx, types.EntityTypeRisk, risk.ID.String(), 0)
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(3).Required()
		gt.Value(t, logs[0].Action).Equal(types.AuditActionUpdated)
		gt.Value(t, logs[2].Action).Equal(types.AuditActionCreated)
		gt.Value(t, logs[0].UserName).Equal("Alice Admin")
	})

	t.Run("limit", func(t *testing.T) {
		logs, err := f.uc.Audit.List(ctx, types.EntityTypeRisk, risk.ID.String(), 1)
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(1)
	})

	t.Run("invalid entity type", func(t *testing.T) {
		_, err := f.uc.Audit.List(ctx, "case", risk.ID.String(), 0)
		gt.Error(t, err).Is(model.ErrInvalidValue)
	})

	t.Run("anonymous changes", func(t *testing.T) {
		other := newFixture(t)
		r, err := other.uc.Risk.CreateRisk(context.Background(), usecase.CreateRiskInput{Title: "anon"})
		gt.NoError(t, err).Required()
		logs, err := other.uc.Audit.List(ctx, types.EntityTypeRisk, r.ID.String(), 0)
		gt.NoError(t, err).Required()
		gt.Value(t, logs[0].UserID).Equal(types.UserID("anonymous"))
	})
}
