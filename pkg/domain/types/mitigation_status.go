package types

import "github.com/m-mizutani/goerr/v2"

// MitigationStatus represents the progress of a mitigation
type MitigationStatus string

const (
	MitigationStatusPlanned    MitigationStatus = "planned"
	MitigationStatusInProgress MitigationStatus = "in_progress"
	MitigationStatusCompleted  MitigationStatus = "completed"
	MitigationStatusCancelled  MitigationStatus = "cancelled"
)

// AllMitigationStatuses returns all valid mitigation statuses
func AllMitigationStatuses() []MitigationStatus {
	return []MitigationStatus{
		MitigationStatusPlanned,
		MitigationStatusInProgress,
		MitigationStatusCompleted,
		MitigationStatusCancelled,
	}
}

// IsValid checks if the mitigation status is valid
func (s MitigationStatus) IsValid() bool {
	switch s {
	case MitigationStatusPlanned,
		MitigationStatusInProgress,
		MitigationStatusCompleted,
		MitigationStatusCancelled:
		return true
	default:
		return false
	}
}

func (s MitigationStatus) String() string {
	return string(s)
}

// ParseMitigationStatus parses a string into a MitigationStatus
func ParseMitigationStatus(s string) (MitigationStatus, error) {
	status := MitigationStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid mitigation status", goerr.V("status", s))
	}
	return status, nil
}
