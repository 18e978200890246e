package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/service/querycache"
)

// CategoryUseCase manages risk categories. Writes require the admin role.
type CategoryUseCase struct {
	repo  interfaces.Repository
	cache *querycache.Cache
	now   func() time.Time
}

func NewCategoryUseCase(repo interfaces.Repository, cache *querycache.Cache, now func() time.Time) *CategoryUseCase {
	if now == nil {
		now = time.Now
	}
	return &CategoryUseCase{repo: repo, cache: cache, now: now}
}

type CategoryInput struct {
	ID          types.CategoryID
	Name        string
	Description string
}

func (uc *CategoryUseCase) ListCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := uc.repo.Category().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list categories")
	}
	return categories, nil
}

func (uc *CategoryUseCase) GetCategory(ctx context.Context, id types.CategoryID) (*model.Category, error) {
	c, err := uc.repo.Category().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrCategoryNotFound, "failed to get category", goerr.V(CategoryIDKey, id))
	}
	return c, nil
}

// CreateCategory stores a new category. An empty ID is generated.
func (uc *CategoryUseCase) CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	if input.ID == "" {
		input.ID = types.NewCategoryID()
	}
	if _, err := uc.repo.Category().Get(ctx, input.ID); err == nil {
		return nil, goerr.Wrap(ErrCategoryExists, "category already exists", goerr.V(CategoryIDKey, input.ID))
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to get category", goerr.V(CategoryIDKey, input.ID))
	}

	return uc.put(ctx, input)
}

// UpsertCategory creates or replaces a category, keeping its creation time
func (uc *CategoryUseCase) UpsertCategory(ctx context.Context, input CategoryInput) (*model.Category, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return uc.put(ctx, input)
}

// UpdateCategory changes name and description of an existing category.
// Nil fields are kept.
func (uc *CategoryUseCase) UpdateCategory(ctx context.Context, id types.CategoryID, name, description *string) (*model.Category, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	existing, err := uc.repo.Category().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrCategoryNotFound, "failed to get category", goerr.V(CategoryIDKey, id))
	}

	input := CategoryInput{ID: id, Name: existing.Name, Description: existing.Description}
	if name != nil {
		input.Name = *name
	}
	if description != nil {
		input.Description = *description
	}
	return uc.put(ctx, input)
}

func (uc *CategoryUseCase) DeleteCategory(ctx context.Context, id types.CategoryID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if err := uc.repo.Category().Delete(ctx, id); err != nil {
		return lookupErr(err, ErrCategoryNotFound, "failed to delete category", goerr.V(CategoryIDKey, id))
	}
	invalidateRisks(uc.cache)
	return nil
}

func (uc *CategoryUseCase) put(ctx context.Context, input CategoryInput) (*model.Category, error) {
	now := uc.now()
	c := &model.Category{
		ID:          input.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid category", goerr.V(CategoryIDKey, input.ID))
	}

	saved, err := uc.repo.Category().Put(ctx, c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save category", goerr.V(CategoryIDKey, input.ID))
	}
	invalidateRisks(uc.cache)
	return saved, nil
}

// FrameworkUseCase manages compliance frameworks and the mapping of risks
// to their controls
type FrameworkUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func NewFrameworkUseCase(repo interfaces.Repository, now func() time.Time) *FrameworkUseCase {
	if now == nil {
		now = time.Now
	}
	return &FrameworkUseCase{repo: repo, now: now}
}

func (uc *FrameworkUseCase) ListFrameworks(ctx context.Context) ([]*model.Framework, error) {
	frameworks, err := uc.repo.Framework().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list frameworks")
	}
	return frameworks, nil
}

func (uc *FrameworkUseCase) CreateFramework(ctx context.Context, name, description string) (*model.Framework, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	f := &model.Framework{
		ID:          types.NewFrameworkID(),
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   uc.now(),
	}
	if err := f.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid framework")
	}

	created, err := uc.repo.Framework().Create(ctx, f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create framework")
	}
	return created, nil
}

// EnsureFramework returns the framework named name, creating it when no
// framework has that name yet
func (uc *FrameworkUseCase) EnsureFramework(ctx context.Context, name, description string) (*model.Framework, bool, error) {
	frameworks, err := uc.ListFrameworks(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, f := range frameworks {
		if strings.EqualFold(f.Name, strings.TrimSpace(name)) {
			return f, false, nil
		}
	}

	created, err := uc.CreateFramework(ctx, name, description)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// ListControls returns the control mappings of a risk with framework names
func (uc *FrameworkUseCase) ListControls(ctx context.Context, riskID types.RiskID) ([]*model.ControlMapping, error) {
	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return nil, lookupErr(err, ErrRiskNotFound, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}

	controls, err := uc.repo.Control().ListByRisk(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list controls", goerr.V(RiskIDKey, riskID))
	}
	return controls, nil
}

func (uc *FrameworkUseCase) LinkControl(ctx context.Context, riskID types.RiskID, frameworkID types.FrameworkID, controlRef, notes string) (*model.ControlMapping, error) {
	c := &model.ControlMapping{
		ID:          types.NewControlMappingID(),
		RiskID:      riskID,
		FrameworkID: frameworkID,
		ControlRef:  strings.TrimSpace(controlRef),
		Notes:       notes,
		CreatedAt:   uc.now(),
		CreatedBy:   actor(ctx),
	}
	if err := c.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid control mapping", goerr.V(RiskIDKey, riskID))
	}

	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return nil, lookupErr(err, ErrRiskNotFound, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}
	if _, err := uc.repo.Framework().Get(ctx, frameworkID); err != nil {
		return nil, lookupErr(err, ErrFrameworkNotFound, "failed to get framework", goerr.V(FrameworkIDKey, frameworkID))
	}

	created, err := uc.repo.Control().Create(ctx, c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to link control",
			goerr.V(RiskIDKey, riskID), goerr.V(FrameworkIDKey, frameworkID))
	}

	recordAudit(ctx, uc.repo, c.CreatedAt, types.EntityTypeControl, created.ID.String(), types.AuditActionCreated, map[string]any{
		"risk_id":      riskID,
		"framework_id": frameworkID,
		"control_ref":  created.ControlRef,
	})
	return created, nil
}

func (uc *FrameworkUseCase) UnlinkControl(ctx context.Context, id types.ControlMappingID) error {
	if err := uc.repo.Control().Delete(ctx, id); err != nil {
		return lookupErr(err, ErrControlNotFound, "failed to unlink control", goerr.V(ControlIDKey, id))
	}
	recordAudit(ctx, uc.repo, uc.now(), types.EntityTypeControl, id.String(), types.AuditActionDeleted, nil)
	return nil
}
