package usecase

import (
	"context"

	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// NopNotifier logs notifications instead of sending them. It is used when
// no Slack channel is configured.
type NopNotifier struct{}

var _ interfaces.Notifier = NopNotifier{}

func (NopNotifier) NotifyStatusChanged(ctx context.Context, risk *model.Risk, from types.RiskStatus) error {
	logging.From(ctx).Debug("risk status changed", "risk_id", risk.ID, "from", from, "to", risk.Status)
	return nil
}

func (NopNotifier) NotifyTransitionFailed(ctx context.Context, id types.RiskID, to types.RiskStatus, cause error) error {
	logging.From(ctx).Warn("risk status transition failed", "risk_id", id, "to", to, "error", cause)
	return nil
}

func (NopNotifier) NotifyOverdueReviews(ctx context.Context, items []*model.ReviewItem) error {
	logging.From(ctx).Info("overdue reviews", "count", len(items))
	return nil
}
