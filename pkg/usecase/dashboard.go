package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/service/querycache"
	"golang.org/x/sync/errgroup"
)

// DashboardUseCase serves the summary, review schedule and analytics views
type DashboardUseCase struct {
	repo  interfaces.Repository
	cache *querycache.Cache
	now   func() time.Time
}

func NewDashboardUseCase(repo interfaces.Repository, cache *querycache.Cache, now func() time.Time) *DashboardUseCase {
	if now == nil {
		now = time.Now
	}
	return &DashboardUseCase{repo: repo, cache: cache, now: now}
}

type snapshot struct {
	risks      []*model.Risk
	categories []*model.Category
}

// load reads risks, categories and users concurrently and joins owner names
func (uc *DashboardUseCase) load(ctx context.Context) (*snapshot, error) {
	var (
		s     snapshot
		users []*model.User
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		risks, err := uc.repo.Risk().ListAll(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list risks")
		}
		s.risks = risks
		return nil
	})
	eg.Go(func() error {
		categories, err := uc.repo.Category().List(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list categories")
		}
		s.categories = categories
		return nil
	})
	eg.Go(func() error {
		list, err := uc.repo.User().List(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list users")
		}
		users = list
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	owners := make(map[types.UserID]*model.User, len(users))
	for _, u := range users {
		owners[u.ID] = u.Public()
	}
	for _, r := range s.risks {
		r.Owner = owners[r.OwnerID]
	}
	return &s, nil
}

func (uc *DashboardUseCase) Summary(ctx context.Context) (*model.DashboardSummary, error) {
	key := querycache.PrefixDashboard + "summary"
	if v, ok := querycache.Get[*model.DashboardSummary](uc.cache, key); ok {
		return v, nil
	}

	s, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	summary := model.Summarize(s.risks, s.categories, uc.now())
	uc.cache.Set(key, summary)
	return summary, nil
}

// UpcomingReviews lists reviews due within days (default 30)
func (uc *DashboardUseCase) UpcomingReviews(ctx context.Context, days int) ([]*model.ReviewItem, error) {
	if days <= 0 {
		days = model.DefaultUpcomingDays
	}
	key := fmt.Sprintf("%supcoming:%d", querycache.PrefixDashboard, days)
	if v, ok := querycache.Get[[]*model.ReviewItem](uc.cache, key); ok {
		return v, nil
	}

	s, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	items := model.UpcomingReviews(s.risks, uc.now(), days)
	uc.cache.Set(key, items)
	return items, nil
}

func (uc *DashboardUseCase) OverdueReviews(ctx context.Context) ([]*model.ReviewItem, error) {
	key := querycache.PrefixDashboard + "overdue"
	if v, ok := querycache.Get[[]*model.ReviewItem](uc.cache, key); ok {
		return v, nil
	}

	s, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	items := model.OverdueReviews(s.risks, uc.now())
	uc.cache.Set(key, items)
	return items, nil
}

func (uc *DashboardUseCase) Calendar(ctx context.Context) ([]*model.CalendarDay, error) {
	key := querycache.PrefixDashboard + "calendar"
	if v, ok := querycache.Get[[]*model.CalendarDay](uc.cache, key); ok {
		return v, nil
	}

	s, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	days := model.BuildCalendar(s.risks, uc.now())
	uc.cache.Set(key, days)
	return days, nil
}

func (uc *DashboardUseCase) Analytics(ctx context.Context, granularity types.Granularity) (*model.Analytics, error) {
	key := querycache.PrefixAnalytics + granularity.String()
	if v, ok := querycache.Get[*model.Analytics](uc.cache, key); ok {
		return v, nil
	}

	s, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	a := model.BuildAnalytics(s.risks, s.categories, uc.now(), granularity)
	uc.cache.Set(key, a)
	return a, nil
}
