package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/service/querycache"
	"github.com/secmon-lab/riskregister/pkg/utils/errutil"
)

type RiskUseCase struct {
	repo     interfaces.Repository
	notifier interfaces.Notifier
	cache    *querycache.Cache
	now      func() time.Time
}

func NewRiskUseCase(repo interfaces.Repository, notifier interfaces.Notifier, cache *querycache.Cache, now func() time.Time) *RiskUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &RiskUseCase{
		repo:     repo,
		notifier: notifier,
		cache:    cache,
		now:      now,
	}
}

// CreateRiskInput holds the fields of a new risk. Empty status and
// severity default to open and medium, an empty owner to the caller.
type CreateRiskInput struct {
	Title       string
	Description string
	OwnerID     types.UserID
	Status      types.RiskStatus
	Severity    types.Severity
	CategoryID  *types.CategoryID
	ReviewDate  string
}

// UpdateRiskInput changes only the non-nil fields. An empty CategoryID or
// ReviewDate clears the value.
type UpdateRiskInput struct {
	Title       *string
	Description *string
	OwnerID     *types.UserID
	Status      *types.RiskStatus
	Severity    *types.Severity
	CategoryID  *types.CategoryID
	ReviewDate  *string
}

func (uc *RiskUseCase) CreateRisk(ctx context.Context, input CreateRiskInput) (*model.Risk, error) {
	reviewDate, err := model.ParseDate(input.ReviewDate)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid review date", goerr.V(model.FieldKey, "review_date"))
	}

	now := uc.now()
	risk := &model.Risk{
		ID:          types.NewRiskID(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		OwnerID:     input.OwnerID,
		Status:      input.Status,
		Severity:    input.Severity,
		CategoryID:  input.CategoryID,
		ReviewDate:  reviewDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actor(ctx),
		UpdatedBy:   actor(ctx),
	}
	if risk.OwnerID == "" {
		risk.OwnerID = actor(ctx)
	}
	if risk.Status == "" {
		risk.Status = types.RiskStatusOpen
	}
	if risk.Severity == "" {
		risk.Severity = types.SeverityMedium
	}
	if risk.CategoryID != nil && *risk.CategoryID == "" {
		risk.CategoryID = nil
	}

	if err := risk.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid risk")
	}
	if err := uc.checkCategory(ctx, risk.CategoryID); err != nil {
		return nil, err
	}

	created, err := uc.repo.Risk().Create(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk")
	}

	recordAudit(ctx, uc.repo, now, types.EntityTypeRisk, created.ID.String(), types.AuditActionCreated, map[string]any{
		"title":    created.Title,
		"status":   created.Status,
		"severity": created.Severity,
	})
	invalidateRisks(uc.cache)

	return uc.join(ctx, created), nil
}

func (uc *RiskUseCase) UpdateRisk(ctx context.Context, id types.RiskID, input UpdateRiskInput) (*model.Risk, error) {
	existing, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrRiskNotFound, "failed to get risk", goerr.V(RiskIDKey, id))
	}

	updated := existing.Copy()
	if input.Title != nil {
		updated.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updated.Description = *input.Description
	}
	if input.OwnerID != nil {
		updated.OwnerID = *input.OwnerID
	}
	if input.Status != nil {
		updated.Status = *input.Status
	}
	if input.Severity != nil {
		updated.Severity = *input.Severity
	}
	if input.CategoryID != nil {
		if *input.CategoryID == "" {
			updated.CategoryID = nil
		} else {
			cid := *input.CategoryID
			updated.CategoryID = &cid
		}
	}
	if input.ReviewDate != nil {
		d, err := model.ParseDate(*input.ReviewDate)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid review date", goerr.V(model.FieldKey, "review_date"))
		}
		updated.ReviewDate = d
	}

	if err := updated.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid risk", goerr.V(RiskIDKey, id))
	}
	if input.CategoryID != nil {
		if err := uc.checkCategory(ctx, updated.CategoryID); err != nil {
			return nil, err
		}
	}

	changes := riskChanges(existing, updated)
	if len(changes) == 0 {
		return uc.join(ctx, existing), nil
	}

	updated.UpdatedAt = uc.now()
	updated.UpdatedBy = actor(ctx)
	saved, err := uc.repo.Risk().Update(ctx, updated)
	if err != nil {
		return nil, lookupErr(err, ErrRiskNotFound, "failed to update risk", goerr.V(RiskIDKey, id))
	}

	recordAudit(ctx, uc.repo, updated.UpdatedAt, types.EntityTypeRisk, id.String(), types.AuditActionUpdated, changes)
	invalidateRisks(uc.cache)
	if existing.Status != saved.Status {
		uc.notifyStatusChanged(ctx, saved, existing.Status)
	}

	return uc.join(ctx, saved), nil
}

// UpdateStatus moves a risk to another status. Moving to the current
// status is a no-op.
func (uc *RiskUseCase) UpdateStatus(ctx context.Context, id types.RiskID, status types.RiskStatus) error {
	if !status.IsValid() {
		return goerr.Wrap(model.ErrInvalidValue, "invalid status",
			goerr.V(model.FieldKey, "status"), goerr.V(model.FieldValueKey, status))
	}

	existing, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return lookupErr(err, ErrRiskNotFound, "failed to get risk", goerr.V(RiskIDKey, id))
	}
	if existing.Status == status {
		return nil
	}

	updated := existing.Copy()
	updated.Status = status
	updated.UpdatedAt = uc.now()
	updated.UpdatedBy = actor(ctx)

	saved, err := uc.repo.Risk().Update(ctx, updated)
	if err != nil {
		return lookupErr(err, ErrRiskNotFound, "failed to update risk status",
			goerr.V(RiskIDKey, id), goerr.V("status", status))
	}

	recordAudit(ctx, uc.repo, updated.UpdatedAt, types.EntityTypeRisk, id.String(), types.AuditActionUpdated, map[string]any{
		"status": model.Change(existing.Status, status),
	})
	invalidateRisks(uc.cache)
	uc.notifyStatusChanged(ctx, saved, existing.Status)

	return nil
}

func (uc *RiskUseCase) DeleteRisk(ctx context.Context, id types.RiskID) error {
	existing, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return lookupErr(err, ErrRiskNotFound, "failed to get risk", goerr.V(RiskIDKey, id))
	}

	if err := uc.repo.Risk().Delete(ctx, id); err != nil {
		return lookupErr(err, ErrRiskNotFound, "failed to delete risk", goerr.V(RiskIDKey, id))
	}

	recordAudit(ctx, uc.repo, uc.now(), types.EntityTypeRisk, id.String(), types.AuditActionDeleted, map[string]any{
		"title": existing.Title,
	})
	invalidateRisks(uc.cache)

	return nil
}

func (uc *RiskUseCase) GetRisk(ctx context.Context, id types.RiskID) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrRiskNotFound, "failed to get risk", goerr.V(RiskIDKey, id))
	}
	return uc.join(ctx, risk), nil
}

// ListRisks returns one page of risks with owners and categories joined
func (uc *RiskUseCase) ListRisks(ctx context.Context, query *model.RiskQuery) (*model.RiskPage, error) {
	q := query.Normalize()
	key := querycache.PrefixRisks + riskQueryKey(q)
	if page, ok := querycache.Get[*model.RiskPage](uc.cache, key); ok {
		return page, nil
	}

	page, err := uc.repo.Risk().List(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	if err := uc.joinAll(ctx, page.Data); err != nil {
		return nil, err
	}

	uc.cache.Set(key, page)
	return page, nil
}

// ListAllRisks returns every risk with owners and categories joined
func (uc *RiskUseCase) ListAllRisks(ctx context.Context) ([]*model.Risk, error) {
	risks, err := uc.repo.Risk().ListAll(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	if err := uc.joinAll(ctx, risks); err != nil {
		return nil, err
	}
	return risks, nil
}

func (uc *RiskUseCase) checkCategory(ctx context.Context, id *types.CategoryID) error {
	if id == nil {
		return nil
	}
	if _, err := uc.repo.Category().Get(ctx, *id); err != nil {
		return lookupErr(err, ErrCategoryNotFound, "failed to get category", goerr.V(CategoryIDKey, *id))
	}
	return nil
}

func (uc *RiskUseCase) notifyStatusChanged(ctx context.Context, risk *model.Risk, from types.RiskStatus) {
	if err := uc.notifier.NotifyStatusChanged(ctx, risk, from); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to notify status change",
			goerr.V(RiskIDKey, risk.ID)), "notification failed")
	}
}

// join fills Owner and Category of a single risk. Missing references are
// left empty.
func (uc *RiskUseCase) join(ctx context.Context, risk *model.Risk) *model.Risk {
	if user, err := uc.repo.User().Get(ctx, risk.OwnerID); err == nil {
		risk.Owner = user.Public()
	}
	if risk.CategoryID != nil {
		if c, err := uc.repo.Category().Get(ctx, *risk.CategoryID); err == nil {
			risk.Category = c
		}
	}
	return risk
}

func (uc *RiskUseCase) joinAll(ctx context.Context, risks []*model.Risk) error {
	if len(risks) == 0 {
		return nil
	}

	users, err := uc.repo.User().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list users")
	}
	owners := make(map[types.UserID]*model.User, len(users))
	for _, u := range users {
		owners[u.ID] = u.Public()
	}

	categories, err := uc.repo.Category().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list categories")
	}
	byID := make(map[types.CategoryID]*model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	for _, r := range risks {
		r.Owner = owners[r.OwnerID]
		if r.CategoryID != nil {
			r.Category = byID[*r.CategoryID]
		}
	}
	return nil
}

// riskChanges lists the fields that differ as {field: {from, to}}
func riskChanges(before, after *model.Risk) map[string]any {
	changes := map[string]any{}
	if before.Title != after.Title {
		changes["title"] = model.Change(before.Title, after.Title)
	}
	if before.Description != after.Description {
		changes["description"] = model.Change(before.Description, after.Description)
	}
	if before.OwnerID != after.OwnerID {
		changes["owner_id"] = model.Change(before.OwnerID, after.OwnerID)
	}
	if before.Status != after.Status {
		changes["status"] = model.Change(before.Status, after.Status)
	}
	if before.Severity != after.Severity {
		changes["severity"] = model.Change(before.Severity, after.Severity)
	}
	if fromCat, toCat := derefString(before.CategoryID), derefString(after.CategoryID); fromCat != toCat {
		changes["category_id"] = model.Change(fromCat, toCat)
	}
	if fromDate, toDate := formatDate(before.ReviewDate), formatDate(after.ReviewDate); fromDate != toDate {
		changes["review_date"] = model.Change(fromDate, toDate)
	}
	return changes
}

func derefString[T ~string](p *T) string {
	if p == nil {
		return ""
	}
	return string(*p)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func riskQueryKey(q *model.RiskQuery) string {
	return fmt.Sprintf("status=%s&severity=%s&category=%s&owner=%s&search=%s&sort=%s&order=%s&page=%d&limit=%d",
		derefString(q.Status),
		derefString(q.Severity),
		derefString(q.CategoryID),
		derefString(q.OwnerID),
		q.Search,
		q.Sort,
		q.Order,
		q.Page,
		q.Limit,
	)
}
