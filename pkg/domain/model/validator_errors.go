package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrMissingRequired = goerr.New("required field is missing")
	ErrInvalidValue    = goerr.New("invalid field value")
	ErrValueTooLong    = goerr.New("field value too long")
	ErrInvalidDate     = goerr.New("invalid date")
)

// Context keys for error values
const (
	FieldKey      = "field"
	FieldValueKey = "field_value"
	MaxLengthKey  = "max_length"
)
