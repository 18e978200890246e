package http

// StatusOf is exported for testing
var StatusOf = statusOf

// ErrBadRequest is exported for testing
var ErrBadRequest = errBadRequest
