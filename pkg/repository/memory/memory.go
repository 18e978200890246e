package memory

import (
	"context"

	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	risk       *riskRepository
	mitigation *mitigationRepository
	category   *categoryRepository
	framework  *frameworkRepository
	control    *controlRepository
	audit      *auditRepository
	user       *userRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	mitigationRepo := newMitigationRepository()
	frameworkRepo := newFrameworkRepository()
	controlRepo := newControlRepository(frameworkRepo)
	riskRepo := newRiskRepository(mitigationRepo, controlRepo)

	return &Memory{
		risk:       riskRepo,
		mitigation: mitigationRepo,
		category:   newCategoryRepository(riskRepo),
		framework:  frameworkRepo,
		control:    controlRepo,
		audit:      newAuditRepository(),
		user:       newUserRepository(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) Mitigation() interfaces.MitigationRepository {
	return m.mitigation
}

func (m *Memory) Category() interfaces.CategoryRepository {
	return m.category
}

func (m *Memory) Framework() interfaces.FrameworkRepository {
	return m.framework
}

func (m *Memory) Control() interfaces.ControlRepository {
	return m.control
}

func (m *Memory) Audit() interfaces.AuditRepository {
	return m.audit
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Close(ctx context.Context) error {
	return nil
}
