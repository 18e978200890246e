package model

import (
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// Mitigation is an action planned or taken to reduce a risk
type Mitigation struct {
	ID          types.MitigationID     `json:"id"`
	RiskID      types.RiskID           `json:"risk_id"`
	Description string                 `json:"description,omitempty"`
	Owner       string                 `json:"owner,omitempty"`
	Status      types.MitigationStatus `json:"status"`
	DueDate     *time.Time             `json:"due_date,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	CreatedBy   types.UserID           `json:"created_by"`
	UpdatedBy   types.UserID           `json:"updated_by"`
}

// Copy returns a deep copy of the mitigation
func (m *Mitigation) Copy() *Mitigation {
	c := *m
	if m.DueDate != nil {
		d := *m.DueDate
		c.DueDate = &d
	}
	return &c
}
