package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound = goerr.New("configuration file not found")
	ErrInvalidConfig  = goerr.New("invalid configuration")
	ErrDuplicateID    = goerr.New("duplicate ID")
	ErrMissingName    = goerr.New("name is required")
	ErrMissingSecret  = goerr.New("JWT secret is required")
	ErrInvalidBackend = goerr.New("invalid repository backend")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	IDKey         = "id"
	BackendKey    = "backend"
)
