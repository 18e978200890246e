package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

func TestCategoryUseCase(t *testing.T) {
	t.Run("writes require admin", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Category.CreateCategory(memberCtx(), usecase.CategoryInput{Name: "Ops"})
		gt.Error(t, err).Is(usecase.ErrForbidden)
		_, err = f.uc.Category.CreateCategory(context.Background(), usecase.CategoryInput{Name: "Ops"})
		gt.Error(t, err).Is(usecase.ErrForbidden)
		gt.Error(t, f.uc.Category.DeleteCategory(memberCtx(), "ops")).Is(usecase.ErrForbidden)
	})

	t.Run("create, list and update", func(t *testing.T) {
		f := newFixture(t)
		ctx := adminCtx()

		_, err := f.uc.Category.CreateCategory(ctx, usecase.CategoryInput{ID: "vendor", Name: "Vendor"})
		gt.NoError(t, err).Required()
		generated, err := f.uc.Category.CreateCategory(ctx, usecase.CategoryInput{Name: "Access"})
		gt.NoError(t, err).Required()
		gt.Value(t, generated.ID).NotEqual(types.CategoryID(""))

		list, err := f.uc.Category.ListCategories(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2).Required()
		gt.Value(t, list[0].Name).Equal("Access")

		updated, err := f.uc.Category.UpdateCategory(ctx, "vendor", nil, ptr("third parties"))
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Name).Equal("Vendor")
		gt.Value(t, updated.Description).Equal("third parties")
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		f := newFixture(t)
		ctx := adminCtx()
		_, err := f.uc.Category.CreateCategory(ctx, usecase.CategoryInput{ID: "ops", Name: "Ops"})
		gt.NoError(t, err).Required()
		_, err = f.uc.Category.CreateCategory(ctx, usecase.CategoryInput{ID: "ops", Name: "Other"})
		gt.Error(t, err).Is(usecase.ErrCategoryExists)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Category.CreateCategory(adminCtx(), usecase.CategoryInput{ID: "ops"})
		gt.Error(t, err).Is(model.ErrMissingRequired)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Category.GetCategory(adminCtx(), "missing")
		gt.Error(t, err).Is(usecase.ErrCategoryNotFound)
		_, err = f.uc.Category.UpdateCategory(adminCtx(), "missing", ptr("x"), nil)
		gt.Error(t, err).Is(usecase.ErrCategoryNotFound)
		gt.Error(t, f.uc.Category.DeleteCategory(adminCtx(), "missing")).Is(usecase.ErrCategoryNotFound)
	})
}

func TestFrameworkUseCase(t *testing.T) {
	t.Run("create requires admin and a name", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Framework.CreateFramework(memberCtx(), "ISO 27001", "")
		gt.Error(t, err).Is(usecase.ErrForbidden)
		_, err = f.uc.Framework.CreateFramework(adminCtx(), " ", "")
		gt.Error(t, err).Is(model.ErrMissingRequired)
	})

	t.Run("ensure is idempotent by name", func(t *testing.T) {
		f := newFixture(t)
		first, created, err := f.uc.Framework.EnsureFramework(adminCtx(), "NIST CSF", "")
		gt.NoError(t, err).Required()
		gt.Bool(t, created).True()

		second, created, err := f.uc.Framework.EnsureFramework(adminCtx(), "nist csf ", "")
		gt.NoError(t, err).Required()
		gt.Bool(t, created).False()
		gt.Value(t, second.ID).Equal(first.ID)
	})

	t.Run("link and unlink controls", func(t *testing.T) {
		f := newFixture(t)
		ctx := adminCtx()
		risk := f.createRisk(t, "x", types.RiskStatusOpen)
		fw, err := f.uc.Framework.CreateFramework(ctx, "SOC 2", "")
		gt.NoError(t, err).Required()

		// linking is open to members
		c, err := f.uc.Framework.LinkControl(memberCtx(), risk.ID, fw.ID, "CC6.1", "logical access")
		gt.NoError(t, err).Required()
		gt.Value(t, c.FrameworkName).Equal("SOC 2")

		list, err := f.uc.Framework.ListControls(ctx, risk.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1).Required()
		gt.Value(t, list[0].ControlRef).Equal("CC6.1")

		gt.NoError(t, f.uc.Framework.UnlinkControl(ctx, c.ID)).Required()
		gt.Error(t, f.uc.Framework.UnlinkControl(ctx, c.ID)).Is(usecase.ErrControlNotFound)

		logs, err := f.repo.Audit().List(ctx, types.EntityTypeControl, c.ID.String(), 10)
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(2)
	})

	t.Run("unknown framework or risk", func(t *testing.T) {
		f := newFixture(t)
		risk := f.createRisk(t, "x", types.RiskStatusOpen)

		_, err := f.uc.Framework.LinkControl(adminCtx(), risk.ID, "missing", "A.5", "")
		gt.Error(t, err).Is(usecase.ErrFrameworkNotFound)
		_, err = f.uc.Framework.LinkControl(adminCtx(), "missing", "fw", "A.5", "")
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
		_, err = f.uc.Framework.LinkControl(adminCtx(), risk.ID, "fw", "", "")
		gt.Error(t, err).Is(model.ErrMissingRequired)
	})
}
