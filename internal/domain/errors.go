package domain

import "errors"

var (
	// ErrTransientIO marks a record-store or price-source failure; the action is safe to retry
	ErrTransientIO = errors.New("transient I/O failure")

	// ErrNotFound marks a lookup of a record that does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation marks input rejected before reaching any backend
	ErrValidation = errors.New("invalid input")

	// ErrInvariantViolation should never be observed; seeing it is a bug
	ErrInvariantViolation = errors.New("invariant violation")
)
