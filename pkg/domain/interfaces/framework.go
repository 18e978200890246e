package interfaces

import (
	"context"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type FrameworkRepository interface {
	Create(ctx context.Context, f *model.Framework) (*model.Framework, error)
	Get(ctx context.Context, id types.FrameworkID) (*model.Framework, error)

	// List returns every framework ordered by name
	List(ctx context.Context) ([]*model.Framework, error)
}

type ControlRepository interface {
	Create(ctx context.Context, c *model.ControlMapping) (*model.ControlMapping, error)

	// ListByRisk returns the control mappings of a risk, oldest first
	ListByRisk(ctx context.Context, riskID types.RiskID) ([]*model.ControlMapping, error)

	Delete(ctx context.Context, id types.ControlMappingID) error
}
