package types

// AuditAction is the kind of change recorded in the audit log
type AuditAction string

const (
	AuditActionCreated AuditAction = "created"
	AuditActionUpdated AuditAction = "updated"
	AuditActionDeleted AuditAction = "deleted"
)

func (a AuditAction) String() string {
	return string(a)
}

// EntityType names the kind of record an audit entry refers to
type EntityType string

const (
	EntityTypeRisk       EntityType = "risk"
	EntityTypeMitigation EntityType = "mitigation"
	EntityTypeControl    EntityType = "control"
)

// IsValid checks if the entity type is one that is audited
func (e EntityType) IsValid() bool {
	switch e {
	case EntityTypeRisk, EntityTypeMitigation, EntityTypeControl:
		return true
	default:
		return false
	}
}

func (e EntityType) String() string {
	return string(e)
}
