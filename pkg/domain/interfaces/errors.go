package interfaces

import "github.com/m-mizutani/goerr/v2"

// Errors shared by every repository backend
var (
	ErrNotFound = goerr.New("entity not found")
	ErrConflict = goerr.New("entity already exists")
)
