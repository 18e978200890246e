package interfaces

import (
	"context"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type MitigationRepository interface {
	Create(ctx context.Context, m *model.Mitigation) (*model.Mitigation, error)
	Get(ctx context.Context, id types.MitigationID) (*model.Mitigation, error)

	// ListByRisk returns mitigations of a risk, oldest first
	ListByRisk(ctx context.Context, riskID types.RiskID) ([]*model.Mitigation, error)

	Update(ctx context.Context, m *model.Mitigation) (*model.Mitigation, error)
	Delete(ctx context.Context, id types.MitigationID) error
}
