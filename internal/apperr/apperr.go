// Package apperr holds the error kinds the services surface. Handlers map
// them to HTTP status codes with errors.Is.
package apperr

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
)
