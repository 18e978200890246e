package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrRiskNotFound       = errors.New("risk not found")
	ErrMitigationNotFound = errors.New("mitigation not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrFrameworkNotFound  = errors.New("framework not found")
	ErrControlNotFound    = errors.New("control mapping not found")
	ErrUserNotFound       = errors.New("user not found")

	// Conflict errors
	ErrCategoryExists = errors.New("category already exists")
	ErrEmailTaken     = errors.New("email is already registered")

	// Access control errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid access token")
	ErrForbidden          = errors.New("admin role required")
)

// Context keys for error values
const (
	RiskIDKey       = "risk_id"
	MitigationIDKey = "mitigation_id"
	CategoryIDKey   = "category_id"
	FrameworkIDKey  = "framework_id"
	ControlIDKey    = "control_id"
	UserIDKey       = "user_id"
	EmailKey        = "email"
)

// lookupErr turns a repository not-found into sentinel and wraps anything
// else as is
func lookupErr(err, sentinel error, msg string, opts ...goerr.Option) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(sentinel, msg, opts...)
	}
	return goerr.Wrap(err, msg, opts...)
}
