package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/repository/memory"
	"github.com/secmon-lab/riskregister/pkg/service/querycache"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/secmon-lab/riskregister/pkg/utils/async"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type statusChange struct {
	id   types.RiskID
	from types.RiskStatus
	to   types.RiskStatus
}

type failedTransition struct {
	id  types.RiskID
	to  types.RiskStatus
	err error
}

type mockNotifier struct {
	mu      sync.Mutex
	changed []statusChange
	failed  []failedTransition
	overdue [][]*model.ReviewItem
}

func (m *mockNotifier) NotifyStatusChanged(ctx context.Context, risk *model.Risk, from types.RiskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed = append(m.changed, statusChange{id: risk.ID, from: from, to: risk.Status})
	return nil
}

func (m *mockNotifier) NotifyTransitionFailed(ctx context.Context, id types.RiskID, to types.RiskStatus, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, failedTransition{id: id, to: to, err: cause})
	return nil
}

func (m *mockNotifier) NotifyOverdueReviews(ctx context.Context, items []*model.ReviewItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overdue = append(m.overdue, items)
	return nil
}

func adminCtx() context.Context {
	token := auth.NewToken("admin-1", "admin@example.com", "Admin", types.UserRoleAdmin)
	return auth.ContextWithToken(context.Background(), token)
}

func memberCtx() context.Context {
	token := auth.NewToken("member-1", "member@example.com", "Member", types.UserRoleMember)
	return auth.ContextWithToken(context.Background(), token)
}

type fixture struct {
	repo     *memory.Memory
	notifier *mockNotifier
	cache    *querycache.Cache
	uc       *usecase.UseCases
}

// newFixture wires use cases over the memory repository with a fixed clock
// and inline dispatch
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     memory.New(),
		notifier: &mockNotifier{},
		cache:    querycache.New(),
	}
	f.uc = usecase.New(f.repo,
		usecase.WithNotifier(f.notifier),
		usecase.WithQueryCache(f.cache),
		usecase.WithClock(clock),
		usecase.WithDispatcher(async.Inline),
	)
	return f
}

func (f *fixture) createRisk(t *testing.T, title string, status types.RiskStatus) *model.Risk {
	t.Helper()
	risk, err := f.uc.Risk.CreateRisk(adminCtx(), usecase.CreateRiskInput{
		Title:    title,
		Status:   status,
		Severity: types.SeverityHigh,
	})
	gt.NoError(t, err).Required()
	return risk
}

func ptr[T any](v T) *T {
	return &v
}
