package model

import (
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 200
)

// AuditLog records a change made to an audited entity
type AuditLog struct {
	ID         types.AuditLogID  `json:"id"`
	EntityType types.EntityType  `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Action     types.AuditAction `json:"action"`
	Changes    map[string]any    `json:"changes,omitempty"`
	UserID     types.UserID      `json:"user_id"`
	UserName   string            `json:"user_name,omitempty" firestore:"-"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Change is the from/to pair recorded for an updated field
func Change(from, to any) map[string]any {
	return map[string]any{"from": from, "to": to}
}

// ClampAuditLimit applies the default and maximum page size
func ClampAuditLimit(limit int) int {
	if limit <= 0 {
		return DefaultAuditLimit
	}
	return min(limit, MaxAuditLimit)
}
