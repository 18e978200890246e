package model

import (
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// Category groups risks by topic
type Category struct {
	ID          types.CategoryID `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
