package interfaces

import (
	"context"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type CategoryRepository interface {
	// Put creates or replaces a category
	Put(ctx context.Context, c *model.Category) (*model.Category, error)
	Get(ctx context.Context, id types.CategoryID) (*model.Category, error)

	// List returns every category ordered by name
	List(ctx context.Context) ([]*model.Category, error)

	Delete(ctx context.Context, id types.CategoryID) error
}
