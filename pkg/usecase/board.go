package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/model/board"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/service/querycache"
	"github.com/secmon-lab/riskregister/pkg/utils/async"
	"github.com/secmon-lab/riskregister/pkg/utils/errutil"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

const boardWorkingSetKey = querycache.PrefixBoard + "working_set"

// BoardUseCase serves the status board. It owns one drag session shared by
// every client.
type BoardUseCase struct {
	risks   *RiskUseCase
	session *board.Session
}

// BoardColumn is a column as shown to clients
type BoardColumn struct {
	Status types.RiskStatus `json:"status"`
	Label  string           `json:"label"`
	Count  int              `json:"count"`
	Risks  []*model.Risk    `json:"risks"`
}

// BoardView is the rendered board. The dragged card is missing from its
// column and returned as Active instead.
type BoardView struct {
	Columns []*BoardColumn `json:"columns"`
	Active  *model.Risk    `json:"active"`
}

func NewBoardUseCase(risks *RiskUseCase, notifier interfaces.Notifier, dispatch async.Dispatcher) *BoardUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if dispatch == nil {
		dispatch = async.Dispatch
	}
	mutator := &reportingMutator{risks: risks, notifier: notifier}
	return &BoardUseCase{
		risks:   risks,
		session: board.NewSession(mutator, board.WithDispatcher(dispatch)),
	}
}

// Refresh reloads the working set from the repository unless a cached
// snapshot is still valid
func (uc *BoardUseCase) Refresh(ctx context.Context) error {
	if risks, ok := querycache.Get[[]*model.Risk](uc.risks.cache, boardWorkingSetKey); ok {
		uc.session.SetWorkingSet(risks)
		return nil
	}

	risks, err := uc.risks.ListAllRisks(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load board working set")
	}
	uc.risks.cache.Set(boardWorkingSetKey, risks)
	uc.session.SetWorkingSet(risks)
	return nil
}

// View partitions the current working set
func (uc *BoardUseCase) View(ctx context.Context) (*BoardView, error) {
	if err := uc.Refresh(ctx); err != nil {
		return nil, err
	}

	cols, active, err := uc.session.Board()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build board")
	}

	view := &BoardView{
		Columns: make([]*BoardColumn, 0, len(cols)),
		Active:  active,
	}
	for _, c := range cols {
		view.Columns = append(view.Columns, &BoardColumn{
			Status: c.Status,
			Label:  c.Label,
			Count:  c.Count(),
			Risks:  c.Risks,
		})
	}
	return view, nil
}

// BeginDrag marks a card as dragged. Unknown ids are ignored.
func (uc *BoardUseCase) BeginDrag(ctx context.Context, id types.RiskID) error {
	if err := uc.Refresh(ctx); err != nil {
		return err
	}
	uc.session.BeginDrag(id)
	return nil
}

// EndDrag drops a card on dest. A nil dest means the card was released
// outside every column.
func (uc *BoardUseCase) EndDrag(ctx context.Context, id types.RiskID, dest *types.RiskStatus) (board.Outcome, error) {
	if dest != nil && !dest.IsValid() {
		// the gesture is over either way
		uc.session.Cancel()
		return "", goerr.Wrap(model.ErrInvalidValue, "invalid column",
			goerr.V(model.FieldKey, "column"), goerr.V(model.FieldValueKey, *dest))
	}
	if err := uc.Refresh(ctx); err != nil {
		uc.session.Cancel()
		return "", err
	}

	outcome := uc.session.EndDrag(ctx, id, dest)
	logging.From(ctx).Debug("drag ended", "risk_id", id, "outcome", outcome)
	return outcome, nil
}

// Run feeds drag events from a channel into the session
func (uc *BoardUseCase) Run(ctx context.Context, events <-chan board.Event) error {
	if err := uc.Refresh(ctx); err != nil {
		return err
	}
	return uc.session.Run(ctx, events)
}

// reportingMutator stores status changes through RiskUseCase and reports
// failures to the notifier, since the board does not wait for the result
type reportingMutator struct {
	risks    *RiskUseCase
	notifier interfaces.Notifier
}

func (m *reportingMutator) UpdateStatus(ctx context.Context, id types.RiskID, status types.RiskStatus) error {
	err := m.risks.UpdateStatus(ctx, id, status)
	if err == nil {
		return nil
	}

	if nerr := m.notifier.NotifyTransitionFailed(ctx, id, status, err); nerr != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(nerr, "failed to notify transition failure",
			goerr.V(RiskIDKey, id)), "notification failed")
	}
	return err
}
