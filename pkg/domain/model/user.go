package model

import (
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// User is an account that can sign in to the register
type User struct {
	ID           types.UserID   `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-" masq:"secret"`
	Name         string         `json:"name"`
	Role         types.UserRole `json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Public returns a copy safe to embed in responses
func (u *User) Public() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}
