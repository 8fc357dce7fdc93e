package types

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAlreadyAssigned marks an insert rejected by the active job unique index.
	ErrAlreadyAssigned = errors.New("booking slot already has an active job")
)
