package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type categoryRepository struct {
	mu         sync.RWMutex
	categories map[types.CategoryID]*model.Category

	risks *riskRepository
}

func newCategoryRepository(risks *riskRepository) *categoryRepository {
	return &categoryRepository{
		categories: make(map[types.CategoryID]*model.Category),
		risks:      risks,
	}
}

func (r *categoryRepository) Put(ctx context.Context, c *model.Category) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *c
	if existing, ok := r.categories[c.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	r.categories[c.ID] = &stored
	result := stored
	return &result, nil
}

func (r *categoryRepository) Get(ctx context.Context, id types.CategoryID) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "category not found", goerr.V("id", id))
	}
	result := *c
	return &result, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		copied := *c
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id types.CategoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "category not found", goerr.V("id", id))
	}
	delete(r.categories, id)
	r.risks.clearCategory(id)
	return nil
}
