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

type riskRepository struct {
	mu    sync.RWMutex
	risks map[types.RiskID]*model.Risk

	mitigations *mitigationRepository
	controls    *controlRepository
}

func newRiskRepository(mitigations *mitigationRepository, controls *controlRepository) *riskRepository {
	return &riskRepository{
		risks:       make(map[types.RiskID]*model.Risk),
		mitigations: mitigations,
		controls:    controls,
	}
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.risks[risk.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrConflict, "risk already exists", goerr.V("id", risk.ID))
	}

	r.risks[risk.ID] = risk.Copy()
	return risk.Copy(), nil
}

func (r *riskRepository) Get(ctx context.Context, id types.RiskID) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, exists := r.risks[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return risk.Copy(), nil
}

// snapshot returns copies of every risk in creation order
func (r *riskRepository) snapshot() []*model.Risk {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risks := make([]*model.Risk, 0, len(r.risks))
	for _, risk := range r.risks {
		risks = append(risks, risk.Copy())
	}
	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].CreatedAt.Equal(risks[j].CreatedAt) {
			return risks[i].ID < risks[j].ID
		}
		return risks[i].CreatedAt.Before(risks[j].CreatedAt)
	})
	return risks
}

func (r *riskRepository) List(ctx context.Context, query *model.RiskQuery) (*model.RiskPage, error) {
	return model.ApplyRiskQuery(r.snapshot(), query), nil
}

func (r *riskRepository) ListAll(ctx context.Context) ([]*model.Risk, error) {
	return r.snapshot(), nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.risks[risk.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("id", risk.ID))
	}

	updated := risk.Copy()
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy

	r.risks[updated.ID] = updated
	return updated.Copy(), nil
}

func (r *riskRepository) Delete(ctx context.Context, id types.RiskID) error {
	r.mu.Lock()
	if _, exists := r.risks[id]; !exists {
		r.mu.Unlock()
		return goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("id", id))
	}
	delete(r.risks, id)
	r.mu.Unlock()

	r.mitigations.deleteByRisk(id)
	r.controls.deleteByRisk(id)
	return nil
}

// clearCategory drops the reference to a deleted category
func (r *riskRepository) clearCategory(id types.CategoryID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, risk := range r.risks {
		if risk.CategoryID != nil && *risk.CategoryID == id {
			risk.CategoryID = nil
		}
	}
}
