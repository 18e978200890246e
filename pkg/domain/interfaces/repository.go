package interfaces

import (
	"context"
)

// Repository defines the interface for data persistence
type Repository interface {
	Risk() RiskRepository
	Mitigation() MitigationRepository
	Category() CategoryRepository
	Framework() FrameworkRepository
	Control() ControlRepository
	Audit() AuditRepository
	User() UserRepository

	// Close releases connections held by the backend
	Close(ctx context.Context) error
}
