package board

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/model/auth"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/utils/async"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// StatusMutator persists a status change of a risk
type StatusMutator interface {
	UpdateStatus(ctx context.Context, id types.RiskID, status types.RiskStatus) error
}

// Outcome tells what EndDrag decided
type Outcome string

const (
	OutcomeNoDestination Outcome = "no_destination"
	OutcomeStale         Outcome = "stale"
	OutcomeUnchanged     Outcome = "unchanged"
	OutcomeDispatched    Outcome = "dispatched"
)

// Session holds the working set of risks and the single drag slot
type Session struct {
	mu       sync.Mutex
	risks    []*model.Risk
	activeID types.RiskID

	mutator  StatusMutator
	dispatch async.Dispatcher
}

// Option configures a Session
type Option func(*Session)

// WithDispatcher replaces the dispatcher used to run status mutations
func WithDispatcher(d async.Dispatcher) Option {
	return func(s *Session) {
		s.dispatch = d
	}
}

// NewSession creates a session with an empty working set
func NewSession(mutator StatusMutator, opts ...Option) *Session {
	s := &Session{
		mutator:  mutator,
		dispatch: async.Dispatch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetWorkingSet replaces the snapshot of risks shown on the board
func (s *Session) SetWorkingSet(risks []*model.Risk) {
	snapshot := make([]*model.Risk, len(risks))
	copy(snapshot, risks)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.risks = snapshot
}

// WorkingSet returns the current snapshot
func (s *Session) WorkingSet() []*model.Risk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.risks
}

func (s *Session) lookup(id types.RiskID) *model.Risk {
	for _, r := range s.risks {
		if r != nil && r.ID == id {
			return r
		}
	}
	return nil
}

// BeginDrag marks id as the active card. Unknown ids are ignored; a second
// call replaces the previous active card.
func (s *Session) BeginDrag(id types.RiskID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookup(id) == nil {
		return
	}
	s.activeID = id
}

// ActiveID returns the id of the card being dragged
func (s *Session) ActiveID() (types.RiskID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, s.activeID != ""
}

// Cancel clears the drag slot without dropping the card anywhere
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
}

// Overlay returns the risk being dragged, or nil
func (s *Session) Overlay() *model.Risk {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == "" {
		return nil
	}
	return s.lookup(s.activeID)
}

// EndDrag clears the drag slot and, when sourceID is dropped on a column
// other than its own, dispatches exactly one status mutation without
// waiting for it.
func (s *Session) EndDrag(ctx context.Context, sourceID types.RiskID, dest *types.RiskStatus) Outcome {
	s.mu.Lock()
	s.activeID = ""
	risk := s.lookup(sourceID)
	s.mu.Unlock()

	if dest == nil {
		return OutcomeNoDestination
	}
	if risk == nil {
		return OutcomeStale
	}
	if risk.Status == *dest {
		return OutcomeUnchanged
	}

	id, status := risk.ID, *dest
	token, hasToken := auth.TokenFromContext(ctx)
	s.dispatch(ctx, func(ctx context.Context) error {
		if hasToken {
			ctx = auth.ContextWithToken(ctx, token)
		}
		if err := s.mutator.UpdateStatus(ctx, id, status); err != nil {
			return goerr.Wrap(err, "failed to update risk status",
				goerr.V("risk_id", id),
				goerr.V("status", status))
		}
		return nil
	})

	logging.From(ctx).Debug("status transition dispatched",
		"risk_id", id,
		"from", risk.Status,
		"to", status,
	)
	return OutcomeDispatched
}

// Board partitions the working set and hides the active card
func (s *Session) Board() (Columns, *model.Risk, error) {
	s.mu.Lock()
	risks := s.risks
	activeID := s.activeID
	s.mu.Unlock()

	cols, err := Partition(risks)
	if err != nil {
		return nil, nil, err
	}
	var overlay *model.Risk
	if activeID != "" {
		overlay, _, _ = cols.Find(activeID)
	}
	return cols.Visible(activeID), overlay, nil
}
