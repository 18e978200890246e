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

type frameworkRepository struct {
	mu         sync.RWMutex
	frameworks map[types.FrameworkID]*model.Framework
}

func newFrameworkRepository() *frameworkRepository {
	return &frameworkRepository{
		frameworks: make(map[types.FrameworkID]*model.Framework),
	}
}

func (r *frameworkRepository) Create(ctx context.Context, f *model.Framework) (*model.Framework, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.frameworks[f.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrConflict, "framework already exists", goerr.V("id", f.ID))
	}
	stored := *f
	r.frameworks[f.ID] = &stored
	result := stored
	return &result, nil
}

func (r *frameworkRepository) Get(ctx context.Context, id types.FrameworkID) (*model.Framework, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.frameworks[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "framework not found", goerr.V("id", id))
	}
	result := *f
	return &result, nil
}

func (r *frameworkRepository) List(ctx context.Context) ([]*model.Framework, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Framework, 0, len(r.frameworks))
	for _, f := range r.frameworks {
		copied := *f
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *frameworkRepository) name(id types.FrameworkID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.frameworks[id]; ok {
		return f.Name
	}
	return ""
}

type controlRepository struct {
	mu         sync.RWMutex
	controls   map[types.ControlMappingID]*model.ControlMapping
	frameworks *frameworkRepository
}

func newControlRepository(frameworks *frameworkRepository) *controlRepository {
	return &controlRepository{
		controls:   make(map[types.ControlMappingID]*model.ControlMapping),
		frameworks: frameworks,
	}
}

func (r *controlRepository) Create(ctx context.Context, c *model.ControlMapping) (*model.ControlMapping, error) {
	if _, err := r.frameworks.Get(ctx, c.FrameworkID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *c
	stored.FrameworkName = ""
	r.controls[c.ID] = &stored

	result := stored
	result.FrameworkName = r.frameworks.name(c.FrameworkID)
	return &result, nil
}

func (r *controlRepository) ListByRisk(ctx context.Context, riskID types.RiskID) ([]*model.ControlMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.ControlMapping{}
	for _, c := range r.controls {
		if c.RiskID != riskID {
			continue
		}
		copied := *c
		copied.FrameworkName = r.frameworks.name(c.FrameworkID)
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *controlRepository) Delete(ctx context.Context, id types.ControlMappingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.controls[id]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "control mapping not found", goerr.V("id", id))
	}
	delete(r.controls, id)
	return nil
}

func (r *controlRepository) deleteByRisk(riskID types.RiskID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.controls {
		if c.RiskID == riskID {
			delete(r.controls, id)
		}
	}
}
