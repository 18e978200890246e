package types

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// RiskID is the opaque, stable identifier of a risk
type RiskID string

// NewRiskID generates a new random RiskID
func NewRiskID() RiskID {
	return RiskID(uuid.New().String())
}

func (id RiskID) String() string { return string(id) }

// MitigationID identifies a mitigation
type MitigationID string

// NewMitigationID generates a new random MitigationID
func NewMitigationID() MitigationID {
	return MitigationID(uuid.New().String())
}

func (id MitigationID) String() string { return string(id) }

// FrameworkID identifies a compliance framework
type FrameworkID string

// NewFrameworkID generates a new random FrameworkID
func NewFrameworkID() FrameworkID {
	return FrameworkID(uuid.New().String())
}

func (id FrameworkID) String() string { return string(id) }

// ControlMappingID identifies the link between a risk and a framework control
type ControlMappingID string

// NewControlMappingID generates a new random ControlMappingID
func NewControlMappingID() ControlMappingID {
	return ControlMappingID(uuid.New().String())
}

func (id ControlMappingID) String() string { return string(id) }

// AuditLogID identifies an audit log entry
type AuditLogID string

// NewAuditLogID generates a new random AuditLogID
func NewAuditLogID() AuditLogID {
	return AuditLogID(uuid.New().String())
}

// UserID identifies a user account
type UserID string

// NewUserID generates a new random UserID
func NewUserID() UserID {
	return UserID(uuid.New().String())
}

func (id UserID) String() string { return string(id) }

// CategoryID represents a unique identifier for a risk category. IDs are
// either generated UUIDs or slugs declared in the configuration file.
type CategoryID string

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// NewCategoryID generates a new random CategoryID
func NewCategoryID() CategoryID {
	return CategoryID(uuid.New().String())
}

// Validate checks if the CategoryID is valid
func (c CategoryID) Validate() error {
	if c == "" {
		return goerr.New("category ID cannot be empty")
	}
	if !idPattern.MatchString(string(c)) {
		return goerr.New("category ID must be lowercase alphanumeric with hyphens", goerr.V("id", c))
	}
	return nil
}

// String returns the string representation of CategoryID
func (c CategoryID) String() string {
	return string(c)
}
