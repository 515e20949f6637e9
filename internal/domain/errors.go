package domain

import "errors"

// Sentinel errors shared across services, repositories, and handlers.
// Callers match with errors.Is; messages carry the specifics.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate")
	ErrConflict   = errors.New("conflict")
)
