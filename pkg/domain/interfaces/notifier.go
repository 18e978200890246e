package interfaces

import (
	"context"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// Notifier delivers register events to people outside the application
type Notifier interface {
	// NotifyStatusChanged is sent after a risk moved to another status
	NotifyStatusChanged(ctx context.Context, risk *model.Risk, from types.RiskStatus) error

	// NotifyTransitionFailed is sent when a requested status change could not be stored
	NotifyTransitionFailed(ctx context.Context, id types.RiskID, to types.RiskStatus, cause error) error

	// NotifyOverdueReviews lists risks whose review date has passed
	NotifyOverdueReviews(ctx context.Context, items []*model.ReviewItem) error
}
