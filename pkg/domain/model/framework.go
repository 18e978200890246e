package model

import (
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// Framework is a compliance framework such as ISO 27001 or SOC 2
type Framework struct {
	ID          types.FrameworkID `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ControlMapping links a risk to a control of a framework
type ControlMapping struct {
	ID            types.ControlMappingID `json:"id"`
	RiskID        types.RiskID           `json:"risk_id"`
	FrameworkID   types.FrameworkID      `json:"framework_id"`
	FrameworkName string                 `json:"framework_name" firestore:"-"`
	ControlRef    string                 `json:"control_ref"`
	Notes         string                 `json:"notes,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	CreatedBy     types.UserID           `json:"created_by"`
}
