package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

func TestRiskUseCase_CreateRisk(t *testing.T) {
	t.Run("defaults status, severity and owner", func(t *testing.T) {
		f := newFixture(t)
		ctx := adminCtx()

		risk, err := f.uc.Risk.CreateRisk(ctx, usecase.CreateRiskInput{
			Title:      "  Vendor outage  ",
			ReviewDate: "2025-04-01",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, risk.Title).Equal("Vendor outage")
		gt.Value(t, risk.Status).Equal(types.RiskStatusOpen)
		gt.Value(t, risk.Severity).Equal(types.SeverityMedium)
		gt.Value(t, risk.OwnerID).Equal(types.UserID("admin-1"))
		gt.Value(t, risk.CreatedAt).Equal(fixedNow)
		gt.Value(t, risk.ReviewDate).NotNil().Required()
		gt.Value(t, risk.ReviewDate.Format("2006-01-02")).Equal("2025-04-01")

		logs, err := f.repo.Audit().List(ctx, types.EntityTypeRisk, risk.ID.String(), 10)
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(1).Required()
		gt.Value(t, logs[0].Action).Equal(types.AuditActionCreated)
		gt.Value(t, logs[0].UserID).Equal(types.UserID("admin-1"))
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Risk.CreateRisk(adminCtx(), usecase.CreateRiskInput{Title: "   "})
		gt.Error(t, err).Is(model.ErrMissingRequired)
	})

	t.Run("invalid review date is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Risk.CreateRisk(adminCtx(), usecase.CreateRiskInput{Title: "x", ReviewDate: "next week"})
		gt.Error(t, err).Is(model.ErrInvalidDate)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		f := newFixture(t)
		cat := types.CategoryID("no-such-category")
		_, err := f.uc.Risk.CreateRisk(adminCtx(), usecase.CreateRiskInput{Title: "x", CategoryID: &cat})
		gt.Error(t, err).Is(usecase.ErrCategoryNotFound)
	})

	t.Run("category is joined", func(t *testing.T) {
		f := newFixture(t)
		ctx := adminCtx()
		_, err := f.uc.Category.CreateCategory(ctx, usecase.CategoryInput{ID: "security", Name: "Security"})
		gt.NoError(t, err).Required()

		cat := types.CategoryID("security")
		risk, err := f.uc.Risk.CreateRisk(ctx, usecase.CreateRiskInput{Title: "x", CategoryID: &cat})
		gt.NoError(t, err).Required()
		gt.Value(t, risk.Category).NotNil().Required()
		gt.Value(t, risk.Category.Name).Equal("Security")
	})
}

func TestRiskUseCase_UpdateRisk(t *testing.T) {
	t.Run("partial update records changes", func(t *testing.T) {
		f := newFixture(t)
		ctx := adminCtx()
		risk := f.createRisk(t, "Phishing", types.RiskStatusOpen)

		updated, err := f.uc.Risk.UpdateRisk(ctx, risk.ID, usecase.UpdateRiskInput{
			Severity:   ptr(types.SeverityCritical),
			ReviewDate: ptr("2025-05-01"),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Title).Equal("Phishing")
		gt.Value(t, updated.Severity).Equal(types.SeverityCritical)

		logs, err := f.repo.Audit().List(ctx, types.EntityTypeRisk, risk.ID.String(), 10)
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(2).Required()
		gt.Value(t, logs[0].Action).Equal(types.AuditActionUpdated)
		gt.Map(t, logs[0].Changes).HasKey("severity")
		gt.Map(t, logs[0].Changes).HasKey("review_date")
	})

	t.Run("empty review date clears it", func(t *testing.T) {
		f := newFixture(t)
		ctx := adminCtx()
		risk, err := f.uc.Risk.CreateRisk(ctx, usecase.CreateRiskInput{Title: "x", ReviewDate: "2025-04-01"})
		gt.NoError(t, err).Required()

		updated, err := f.uc.Risk.UpdateRisk(ctx, risk.ID, usecase.UpdateRiskInput{ReviewDate: ptr("")})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.ReviewDate).Nil()
	})

	t.Run("status change notifies", func(t *testing.T) {
		f := newFixture(t)
		risk := f.createRisk(t, "x", types.RiskStatusOpen)

		_, err := f.uc.Risk.UpdateRisk(adminCtx(), risk.ID, usecase.UpdateRiskInput{Status: ptr(types.RiskStatusResolved)})
		gt.NoError(t, err).Required()
		gt.Array(t, f.notifier.changed).Length(1).Required()
		gt.Value(t, f.notifier.changed[0].from).Equal(types.RiskStatusOpen)
		gt.Value(t, f.notifier.changed[0].to).Equal(types.RiskStatusResolved)
	})

	t.Run("unknown risk", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Risk.UpdateRisk(adminCtx(), "missing", usecase.UpdateRiskInput{Title: ptr("x")})
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})

	t.Run("invalid severity", func(t *testing.T) {
		f := newFixture(t)
		risk := f.createRisk(t, "x", types.RiskStatusOpen)
		_, err := f.uc.Risk.UpdateRisk(adminCtx(), risk.ID, usecase.UpdateRiskInput{Severity: ptr(types.Severity("extreme"))})
		gt.Error(t, err).Is(model.ErrInvalidValue)
	})
}

func TestRiskUseCase_UpdateStatus(t *testing.T) {
	t.Run("moves the risk and audits", func(t *testing.T) {
		f := newFixture(t)
		ctx := memberCtx()
		risk := f.createRisk(t, "x", types.RiskStatusOpen)

		gt.NoError(t, f.uc.Risk.UpdateStatus(ctx, risk.ID, types.RiskStatusMitigating)).Required()

		got, err := f.uc.Risk.GetRisk(ctx, risk.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.RiskStatusMitigating)
		gt.Value(t, got.UpdatedBy).Equal(types.UserID("member-1"))

		logs, err := f.repo.Audit().List(ctx, types.EntityTypeRisk, risk.ID.String(), 10)
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(2).Required()
		gt.Map(t, logs[0].Changes).HasKey("status")
		gt.Array(t, f.notifier.changed).Length(1)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		f := newFixture(t)
		ctx := adminCtx()
		risk := f.createRisk(t, "x", types.RiskStatusOpen)

		gt.NoError(t, f.uc.Risk.UpdateStatus(ctx, risk.ID, types.RiskStatusOpen)).Required()
		logs, err := f.repo.Audit().List(ctx, types.EntityTypeRisk, risk.ID.String(), 10)
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(1)
		gt.Array(t, f.notifier.changed).Length(0)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t)
		risk := f.createRisk(t, "x", types.RiskStatusOpen)
		err := f.uc.Risk.UpdateStatus(adminCtx(), risk.ID, "archived")
		gt.Error(t, err).Is(model.ErrInvalidValue)
	})

	t.Run("unknown risk", func(t *testing.T) {
		f := newFixture(t)
		err := f.uc.Risk.UpdateStatus(adminCtx(), "missing", types.RiskStatusResolved)
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})
}

func TestRiskUseCase_DeleteRisk(t *testing.T) {
	f := newFixture(t)
	ctx := adminCtx()
	risk := f.createRisk(t, "x", types.RiskStatusOpen)
	_, err := f.uc.Mitigation.CreateMitigation(ctx, risk.ID, usecase.CreateMitigationInput{Description: "patch", Owner: "ops"})
	gt.NoError(t, err).Required()

	gt.NoError(t, f.uc.Risk.DeleteRisk(ctx, risk.ID)).Required()

	_, err = f.uc.Risk.GetRisk(ctx, risk.ID)
	gt.Error(t, err).Is(usecase.ErrRiskNotFound)

	mitigations, err := f.repo.Mitigation().ListByRisk(ctx, risk.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, mitigations).Length(0)

	logs, err := f.repo.Audit().List(ctx, types.EntityTypeRisk, risk.ID.String(), 10)
	gt.NoError(t, err).Required()
	gt.Value(t, logs[0].Action).Equal(types.AuditActionDeleted)

	gt.Error(t, f.uc.Risk.DeleteRisk(ctx, risk.ID)).Is(usecase.ErrRiskNotFound)
}

func TestRiskUseCase_ListRisks(t *testing.T) {
	t.Run("filters and paginates", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			f.createRisk(t, "open risk", types.RiskStatusOpen)
		}
		f.createRisk(t, "resolved risk", types.RiskStatusResolved)

		page, err := f.uc.Risk.ListRisks(ctx, &model.RiskQuery{Status: ptr(types.RiskStatusOpen), Limit: 2})
		gt.NoError(t, err).Required()
		gt.Array(t, page.Data).Length(2)
		gt.Value(t, page.Meta.Total).Equal(3)
		gt.Value(t, page.Meta.Page).Equal(1)
		gt.Value(t, page.Meta.Limit).Equal(2)
	})

	t.Run("writes invalidate the cached page", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.createRisk(t, "first", types.RiskStatusOpen)

		page, err := f.uc.Risk.ListRisks(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, page.Meta.Total).Equal(1)
		gt.Number(t, f.cache.Len()).GreaterOrEqual(1)

		f.createRisk(t, "second", types.RiskStatusOpen)
		page, err = f.uc.Risk.ListRisks(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, page.Meta.Total).Equal(2)
	})

	t.Run("owner is joined", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.repo.User().Create(ctx, &model.User{
			ID: "admin-1", Email: "admin@example.com", Name: "Admin", Role: types.UserRoleAdmin,
		})
		gt.NoError(t, err).Required()
		f.createRisk(t, "x", types.RiskStatusOpen)

		page, err := f.uc.Risk.ListRisks(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, page.Data).Length(1).Required()
		gt.Value(t, page.Data[0].Owner).NotNil().Required()
		gt.Value(t, page.Data[0].Owner.Name).Equal("Admin")
		gt.Value(t, page.Data[0].Owner.PasswordHash).Equal("")
	})
}

func TestRiskChanges(t *testing.T) {
	before := &model.Risk{Title: "a", Status: types.RiskStatusOpen, Severity: types.SeverityLow}
	after := before.Copy()
	gt.Value(t, len(usecase.RiskChanges(before, after))).Equal(0)

	cat := types.CategoryID("ops")
	after.Title = "b"
	after.CategoryID = &cat
	changes := usecase.RiskChanges(before, after)
	gt.Map(t, changes).HasKey("title")
	gt.Map(t, changes).HasKey("category_id")
	gt.Value(t, changes["category_id"]).Equal(any(model.Change("", "ops")))
}

func TestRiskQueryKey(t *testing.T) {
	a := usecase.RiskQueryKey((&model.RiskQuery{Status: ptr(types.RiskStatusOpen)}).Normalize())
	b := usecase.RiskQueryKey((&model.RiskQuery{Status: ptr(types.RiskStatusResolved)}).Normalize())
	gt.String(t, a).NotEqual(b)
	gt.String(t, a).Contains("status=open")
}
