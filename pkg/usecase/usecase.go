package usecase

import (
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/service/querycache"
	"github.com/secmon-lab/riskregister/pkg/utils/async"
)

type UseCases struct {
	repo     interfaces.Repository
	notifier interfaces.Notifier
	cache    *querycache.Cache
	now      func() time.Time
	dispatch async.Dispatcher

	Risk       *RiskUseCase
	Mitigation *MitigationUseCase
	Category   *CategoryUseCase
	Framework  *FrameworkUseCase
	Dashboard  *DashboardUseCase
	Audit      *AuditUseCase
	Assist     *AssistUseCase
	Board      *BoardUseCase
	Auth       AuthUseCaseInterface
}

type Option func(*UseCases)

// WithNotifier sets where status changes and failed transitions are reported
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithQueryCache enables caching of list and aggregate queries
func WithQueryCache(c *querycache.Cache) Option {
	return func(uc *UseCases) {
		uc.cache = c
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// WithDispatcher replaces the dispatcher used by the board for status mutations
func WithDispatcher(d async.Dispatcher) Option {
	return func(uc *UseCases) {
		uc.dispatch = d
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		notifier: NopNotifier{},
		now:      time.Now,
		dispatch: async.Dispatch,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Risk = NewRiskUseCase(repo, uc.notifier, uc.cache, uc.now)
	uc.Mitigation = NewMitigationUseCase(repo, uc.now)
	uc.Category = NewCategoryUseCase(repo, uc.cache, uc.now)
	uc.Framework = NewFrameworkUseCase(repo, uc.now)
	uc.Dashboard = NewDashboardUseCase(repo, uc.cache, uc.now)
	uc.Audit = NewAuditUseCase(repo)
	uc.Assist = NewAssistUseCase()
	uc.Board = NewBoardUseCase(uc.Risk, uc.notifier, uc.dispatch)
	if uc.Auth == nil {
		uc.Auth = NewNoAuthnUseCase(repo, "")
	}

	return uc
}

// invalidateRisks drops every cached view derived from the risk table
func invalidateRisks(c *querycache.Cache) {
	c.Invalidate(
		querycache.PrefixRisks,
		querycache.PrefixDashboard,
		querycache.PrefixAnalytics,
		querycache.PrefixBoard,
	)
}
