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

type mitigationRepository struct {
	mu          sync.RWMutex
	mitigations map[types.MitigationID]*model.Mitigation
}

func newMitigationRepository() *mitigationRepository {
	return &mitigationRepository{
		mitigations: make(map[types.MitigationID]*model.Mitigation),
	}
}

func (r *mitigationRepository) Create(ctx context.Context, m *model.Mitigation) (*model.Mitigation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mitigations[m.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrConflict, "mitigation already exists", goerr.V("id", m.ID))
	}
	r.mitigations[m.ID] = m.Copy()
	return m.Copy(), nil
}

func (r *mitigationRepository) Get(ctx context.Context, id types.MitigationID) (*model.Mitigation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.mitigations[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "mitigation not found", goerr.V("id", id))
	}
	return m.Copy(), nil
}

func (r *mitigationRepository) ListByRisk(ctx context.Context, riskID types.RiskID) ([]*model.Mitigation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Mitigation{}
	for _, m := range r.mitigations {
		if m.RiskID == riskID {
			result = append(result, m.Copy())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *mitigationRepository) Update(ctx context.Context, m *model.Mitigation) (*model.Mitigation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.mitigations[m.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "mitigation not found", goerr.V("id", m.ID))
	}
	updated := m.Copy()
	updated.RiskID = existing.RiskID
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	r.mitigations[m.ID] = updated
	return updated.Copy(), nil
}

func (r *mitigationRepository) Delete(ctx context.Context, id types.MitigationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mitigations[id]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "mitigation not found", goerr.V("id", id))
	}
	delete(r.mitigations, id)
	return nil
}

func (r *mitigationRepository) deleteByRisk(riskID types.RiskID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, m := range r.mitigations {
		if m.RiskID == riskID {
			delete(r.mitigations, id)
		}
	}
}
