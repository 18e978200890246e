package board_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
	"github.com/secmon-lab/riskregister/pkg/domain/model/board"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/utils/async"
)

type mutationCall struct {
	ID     types.RiskID
	Status types.RiskStatus
	Token  *auth.Token
}

type mockMutator struct {
	mu    sync.Mutex
	calls []mutationCall
	err   error
}

func (m *mockMutator) UpdateStatus(ctx context.Context, id types.RiskID, status types.RiskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, _ := auth.TokenFromContext(ctx)
	m.calls = append(m.calls, mutationCall{ID: id, Status: status, Token: token})
	return m.err
}

func (m *mockMutator) Calls() []mutationCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mutationCall(nil), m.calls...)
}

func newRisk(id string, status types.RiskStatus) *model.Risk {
	return &model.Risk{
		ID:       types.RiskID(id),
		Title:    "risk " + id,
		Status:   status,
		Severity: types.SeverityMedium,
	}
}

func ids(risks []*model.Risk) []types.RiskID {
	out := make([]types.RiskID, len(risks))
	for i, r := range risks {
		out[i] = r.ID
	}
	return out
}

func statusPtr(s types.RiskStatus) *types.RiskStatus {
	return &s
}

func TestPartition(t *testing.T) {
	t.Run("empty input yields every column", func(t *testing.T) {
		cols, err := board.Partition(nil)
		gt.NoError(t, err).Required()
		gt.Array(t, cols).Length(4)
		for i, s := range types.AllRiskStatuses() {
			gt.Value(t, cols[i].Status).Equal(s)
			gt.Array(t, cols[i].Risks).Length(0)
		}
	})

	t.Run("complete and stable", func(t *testing.T) {
		risks := []*model.Risk{
			newRisk("a", types.RiskStatusResolved),
			newRisk("b", types.RiskStatusOpen),
			newRisk("c", types.RiskStatusResolved),
			newRisk("d", types.RiskStatusAccepted),
			newRisk("e", types.RiskStatusOpen),
			newRisk("f", types.RiskStatusMitigating),
		}
		cols, err := board.Partition(risks)
		gt.NoError(t, err).Required()

		gt.Number(t, cols.Total()).Equal(len(risks))
		gt.Value(t, ids(cols.Column(types.RiskStatusOpen).Risks)).Equal([]types.RiskID{"b", "e"})
		gt.Value(t, ids(cols.Column(types.RiskStatusMitigating).Risks)).Equal([]types.RiskID{"f"})
		gt.Value(t, ids(cols.Column(types.RiskStatusResolved).Risks)).Equal([]types.RiskID{"a", "c"})
		gt.Value(t, ids(cols.Column(types.RiskStatusAccepted).Risks)).Equal([]types.RiskID{"d"})

		seen := map[types.RiskID]int{}
		for _, col := range cols {
			for _, r := range col.Risks {
				seen[r.ID]++
				gt.Value(t, r.Status).Equal(col.Status)
			}
		}
		for _, r := range risks {
			gt.Number(t, seen[r.ID]).Equal(1)
		}
	})

	t.Run("pure", func(t *testing.T) {
		risks := []*model.Risk{
			newRisk("a", types.RiskStatusOpen),
			newRisk("b", types.RiskStatusAccepted),
		}
		first, err := board.Partition(risks)
		gt.NoError(t, err).Required()
		second, err := board.Partition(risks)
		gt.NoError(t, err).Required()
		for i := range first {
			gt.Value(t, ids(first[i].Risks)).Equal(ids(second[i].Risks))
		}
		gt.Value(t, ids(risks)).Equal([]types.RiskID{"a", "b"})
	})

	t.Run("unknown status fails", func(t *testing.T) {
		risks := []*model.Risk{
			newRisk("a", types.RiskStatusOpen),
			newRisk("b", types.RiskStatus("archived")),
		}
		_, err := board.Partition(risks)
		gt.Error(t, err).Is(board.ErrInvalidStatus)
	})

	t.Run("nil risk fails", func(t *testing.T) {
		_, err := board.Partition([]*model.Risk{newRisk("a", types.RiskStatusOpen), nil})
		gt.Error(t, err).Is(board.ErrInvalidStatus)
	})
}

func TestVisible(t *testing.T) {
	cols, err := board.Partition([]*model.Risk{
		newRisk("a", types.RiskStatusOpen),
		newRisk("b", types.RiskStatusOpen),
	})
	gt.NoError(t, err).Required()

	visible := cols.Visible("a")
	gt.Value(t, ids(visible.Column(types.RiskStatusOpen).Risks)).Equal([]types.RiskID{"b"})
	// the partition itself keeps the active card
	gt.Value(t, ids(cols.Column(types.RiskStatusOpen).Risks)).Equal([]types.RiskID{"a", "b"})

	gt.Value(t, ids(cols.Visible("").Column(types.RiskStatusOpen).Risks)).Equal([]types.RiskID{"a", "b"})
}

func newSession(t *testing.T, m *mockMutator, risks ...*model.Risk) *board.Session {
	t.Helper()
	s := board.NewSession(m, board.WithDispatcher(async.Inline))
	s.SetWorkingSet(risks)
	return s
}

func TestSessionBeginDrag(t *testing.T) {
	t.Run("known id becomes active", func(t *testing.T) {
		s := newSession(t, &mockMutator{}, newRisk("r1", types.RiskStatusOpen))
		s.BeginDrag("r1")
		id, ok := s.ActiveID()
		gt.Bool(t, ok).True()
		gt.Value(t, id).Equal(types.RiskID("r1"))
		gt.Value(t, s.Overlay().ID).Equal(types.RiskID("r1"))
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		s := newSession(t, &mockMutator{}, newRisk("r1", types.RiskStatusOpen))
		s.BeginDrag("missing")
		_, ok := s.ActiveID()
		gt.Bool(t, ok).False()
		gt.Value(t, s.Overlay()).Nil()
	})

	t.Run("cancel clears the slot without a mutation", func(t *testing.T) {
		m := &mockMutator{}
		s := newSession(t, m, newRisk("r1", types.RiskStatusOpen))
		s.BeginDrag("r1")
		s.Cancel()
		_, ok := s.ActiveID()
		gt.Bool(t, ok).False()
		gt.Array(t, m.Calls()).Length(0)
	})

	t.Run("last write wins", func(t *testing.T) {
		s := newSession(t, &mockMutator{},
			newRisk("r1", types.RiskStatusOpen),
			newRisk("r2", types.RiskStatusOpen))
		s.BeginDrag("r1")
		s.BeginDrag("r2")
		id, _ := s.ActiveID()
		gt.Value(t, id).Equal(types.RiskID("r2"))
	})
}

func TestSessionEndDrag(t *testing.T) {
	ctx := context.Background()

	t.Run("drop on same column does nothing", func(t *testing.T) {
		m := &mockMutator{}
		s := newSession(t, m, newRisk("r1", types.RiskStatusOpen))
		s.BeginDrag("r1")
		out := s.EndDrag(ctx, "r1", statusPtr(types.RiskStatusOpen))
		gt.Value(t, out).Equal(board.OutcomeUnchanged)
		gt.Array(t, m.Calls()).Length(0)
		_, active := s.ActiveID()
		gt.Bool(t, active).False()
	})

	t.Run("drop on other column mutates once", func(t *testing.T) {
		m := &mockMutator{}
		s := newSession(t, m, newRisk("r1", types.RiskStatusOpen))
		s.BeginDrag("r1")
		out := s.EndDrag(ctx, "r1", statusPtr(types.RiskStatusResolved))
		gt.Value(t, out).Equal(board.OutcomeDispatched)
		calls := m.Calls()
		gt.Array(t, calls).Length(1).Required()
		gt.Value(t, calls[0].ID).Equal(types.RiskID("r1"))
		gt.Value(t, calls[0].Status).Equal(types.RiskStatusResolved)
	})

	t.Run("drop outside columns clears session", func(t *testing.T) {
		m := &mockMutator{}
		s := newSession(t, m, newRisk("r1", types.RiskStatusOpen))
		s.BeginDrag("r1")
		out := s.EndDrag(ctx, "r1", nil)
		gt.Value(t, out).Equal(board.OutcomeNoDestination)
		gt.Array(t, m.Calls()).Length(0)
		gt.Value(t, s.Overlay()).Nil()
	})

	t.Run("stale id is ignored", func(t *testing.T) {
		m := &mockMutator{}
		s := newSession(t, m, newRisk("r1", types.RiskStatusOpen))
		s.BeginDrag("r1")
		s.SetWorkingSet([]*model.Risk{newRisk("r2", types.RiskStatusOpen)})
		out := s.EndDrag(ctx, "r1", statusPtr(types.RiskStatusAccepted))
		gt.Value(t, out).Equal(board.OutcomeStale)
		gt.Array(t, m.Calls()).Length(0)
		_, active := s.ActiveID()
		gt.Bool(t, active).False()
	})

	t.Run("mutation failure leaves partition untouched", func(t *testing.T) {
		m := &mockMutator{err: errors.New("backend down")}
		s := newSession(t, m, newRisk("r1", types.RiskStatusOpen))
		s.EndDrag(ctx, "r1", statusPtr(types.RiskStatusMitigating))
		gt.Array(t, m.Calls()).Length(1)

		cols, overlay, err := s.Board()
		gt.NoError(t, err).Required()
		gt.Value(t, overlay).Nil()
		gt.Value(t, ids(cols.Column(types.RiskStatusOpen).Risks)).Equal([]types.RiskID{"r1"})
	})

	t.Run("caller token reaches the mutator", func(t *testing.T) {
		m := &mockMutator{}
		s := newSession(t, m, newRisk("r1", types.RiskStatusOpen))
		token := auth.NewToken("u1", "u1@example.com", "User", types.UserRoleMember)
		s.EndDrag(auth.ContextWithToken(ctx, token), "r1", statusPtr(types.RiskStatusAccepted))
		calls := m.Calls()
		gt.Array(t, calls).Length(1).Required()
		gt.Value(t, calls[0].Token.Sub).Equal(types.UserID("u1"))
	})

	t.Run("async dispatch does not block", func(t *testing.T) {
		done := make(chan struct{})
		m := &blockingMutator{release: done, called: make(chan struct{}, 1)}
		s := board.NewSession(m)
		s.SetWorkingSet([]*model.Risk{newRisk("r1", types.RiskStatusOpen)})

		out := s.EndDrag(ctx, "r1", statusPtr(types.RiskStatusResolved))
		gt.Value(t, out).Equal(board.OutcomeDispatched)
		close(done)

		select {
		case <-m.called:
		case <-time.After(time.Second):
			t.Fatal("mutation was not dispatched")
		}
	})
}

type blockingMutator struct {
	release chan struct{}
	called  chan struct{}
}

func (m *blockingMutator) UpdateStatus(ctx context.Context, id types.RiskID, status types.RiskStatus) error {
	<-m.release
	m.called <- struct{}{}
	return nil
}

// R1 open/high, R2 open/low, R3 resolved/medium. Dragging R2 to
// mitigating issues one mutation and the refreshed board shows
// open [R1], mitigating [R2], resolved [R3].
func TestBoardWalkthrough(t *testing.T) {
	ctx := context.Background()
	r1 := newRisk("R1", types.RiskStatusOpen)
	r1.Severity = types.SeverityHigh
	r2 := newRisk("R2", types.RiskStatusOpen)
	r2.Severity = types.SeverityLow
	r3 := newRisk("R3", types.RiskStatusResolved)

	m := &mockMutator{}
	s := newSession(t, m, r1, r2, r3)

	cols, overlay, err := s.Board()
	gt.NoError(t, err).Required()
	gt.Value(t, overlay).Nil()
	gt.Value(t, ids(cols.Column(types.RiskStatusOpen).Risks)).Equal([]types.RiskID{"R1", "R2"})
	gt.Array(t, cols.Column(types.RiskStatusMitigating).Risks).Length(0)
	gt.Value(t, ids(cols.Column(types.RiskStatusResolved).Risks)).Equal([]types.RiskID{"R3"})
	gt.Array(t, cols.Column(types.RiskStatusAccepted).Risks).Length(0)

	s.BeginDrag("R2")
	cols, overlay, err = s.Board()
	gt.NoError(t, err).Required()
	gt.Value(t, overlay.ID).Equal(types.RiskID("R2"))
	gt.Value(t, ids(cols.Column(types.RiskStatusOpen).Risks)).Equal([]types.RiskID{"R1"})

	s.EndDrag(ctx, "R2", statusPtr(types.RiskStatusMitigating))
	calls := m.Calls()
	gt.Array(t, calls).Length(1).Required()
	gt.Value(t, calls[0]).Equal(mutationCall{ID: "R2", Status: types.RiskStatusMitigating})

	// the engine never moves the card itself
	cols, _, err = s.Board()
	gt.NoError(t, err).Required()
	gt.Value(t, ids(cols.Column(types.RiskStatusOpen).Risks)).Equal([]types.RiskID{"R1", "R2"})

	moved := *r2
	moved.Status = types.RiskStatusMitigating
	s.SetWorkingSet([]*model.Risk{r1, &moved, r3})
	cols, _, err = s.Board()
	gt.NoError(t, err).Required()
	gt.Value(t, ids(cols.Column(types.RiskStatusOpen).Risks)).Equal([]types.RiskID{"R1"})
	gt.Value(t, ids(cols.Column(types.RiskStatusMitigating).Risks)).Equal([]types.RiskID{"R2"})
	gt.Value(t, ids(cols.Column(types.RiskStatusResolved).Risks)).Equal([]types.RiskID{"R3"})
}

func TestSessionRun(t *testing.T) {
	m := &mockMutator{}
	s := newSession(t, m,
		newRisk("r1", types.RiskStatusOpen),
		newRisk("r2", types.RiskStatusMitigating))

	events := make(chan board.Event, 4)
	events <- board.Event{Kind: board.DragStart, RiskID: "r1"}
	events <- board.Event{Kind: board.DragEnd, RiskID: "r1", Dest: statusPtr(types.RiskStatusAccepted)}
	events <- board.Event{Kind: board.DragStart, RiskID: "r2"}
	events <- board.Event{Kind: board.DragEnd, RiskID: "r2"}
	close(events)

	gt.NoError(t, s.Run(context.Background(), events))
	calls := m.Calls()
	gt.Array(t, calls).Length(1).Required()
	gt.Value(t, calls[0].ID).Equal(types.RiskID("r1"))
	_, active := s.ActiveID()
	gt.Bool(t, active).False()

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := s.Run(ctx, make(chan board.Event))
		gt.Error(t, err).Is(context.Canceled)
	})
}

func TestSessionConcurrentAccess(t *testing.T) {
	m := &mockMutator{}
	risks := []*model.Risk{
		newRisk("r1", types.RiskStatusOpen),
		newRisk("r2", types.RiskStatusOpen),
	}
	s := newSession(t, m, risks...)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := risks[i%2].ID
			s.BeginDrag(id)
			_, _, _ = s.Board()
			s.EndDrag(context.Background(), id, statusPtr(types.RiskStatusOpen))
		}(i)
	}
	wg.Wait()

	gt.Array(t, m.Calls()).Length(0)
	_, active := s.ActiveID()
	gt.Bool(t, active).False()
}
