package interfaces

import (
	"context"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type RiskRepository interface {
	// Create stores a new risk. ID and timestamps must already be set.
	Create(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Get retrieves a risk by ID
	Get(ctx context.Context, id types.RiskID) (*model.Risk, error)

	// List retrieves one page of risks matching query. A nil query lists
	// the first page with default ordering.
	List(ctx context.Context, query *model.RiskQuery) (*model.RiskPage, error)

	// ListAll retrieves every risk without pagination
	ListAll(ctx context.Context) ([]*model.Risk, error)

	// Update replaces an existing risk
	Update(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Delete deletes a risk and its mitigations and control mappings
	Delete(ctx context.Context, id types.RiskID) error
}
