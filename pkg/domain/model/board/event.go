package board

import (
	"context"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// EventKind is the type of a drag gesture
type EventKind int

const (
	DragStart EventKind = iota + 1
	DragEnd
)

// Event is a drag gesture delivered by a pointer or keyboard source
type Event struct {
	Kind   EventKind
	RiskID types.RiskID
	// Dest is the column the card was dropped on. Nil means outside any column.
	Dest *types.RiskStatus
}

// Run feeds events to BeginDrag/EndDrag until ctx is done or events is closed
func (s *Session) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Kind {
			case DragStart:
				s.BeginDrag(ev.RiskID)
			case DragEnd:
				s.EndDrag(ctx, ev.RiskID, ev.Dest)
			default:
				logging.From(ctx).Warn("unknown board event", "kind", ev.Kind)
			}
		}
	}
}
