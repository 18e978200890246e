package types

import "github.com/m-mizutani/goerr/v2"

// RiskStatus represents the lifecycle state of a risk. Each status is
// also a column of the risk board.
type RiskStatus string

const (
	RiskStatusOpen       RiskStatus = "open"
	RiskStatusMitigating RiskStatus = "mitigating"
	RiskStatusResolved   RiskStatus = "resolved"
	RiskStatusAccepted   RiskStatus = "accepted"
)

// AllRiskStatuses returns all valid risk statuses in board display order
func AllRiskStatuses() []RiskStatus {
	return []RiskStatus{
		RiskStatusOpen,
		RiskStatusMitigating,
		RiskStatusResolved,
		RiskStatusAccepted,
	}
}

// IsValid checks if the risk status is valid
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskStatusOpen,
		RiskStatusMitigating,
		RiskStatusResolved,
		RiskStatusAccepted:
		return true
	default:
		return false
	}
}

// IsClosed reports whether the status counts as closed for trend analytics
func (s RiskStatus) IsClosed() bool {
	return s == RiskStatusResolved || s == RiskStatusAccepted
}

// Label returns the human readable column title
func (s RiskStatus) Label() string {
	switch s {
	case RiskStatusOpen:
		return "Open"
	case RiskStatusMitigating:
		return "Mitigating"
	case RiskStatusResolved:
		return "Resolved"
	case RiskStatusAccepted:
		return "Accepted"
	default:
		return string(s)
	}
}

// String returns the string representation of the risk status
func (s RiskStatus) String() string {
	return string(s)
}

// ParseRiskStatus parses a string into a RiskStatus
func ParseRiskStatus(s string) (RiskStatus, error) {
	status := RiskStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid risk status", goerr.V("status", s))
	}
	return status, nil
}
