package engine

import "errors"

var (
	// ErrSubmit indicates the purge client rejected or failed a plan.
	ErrSubmit = errors.New("purge submission failed")

	// ErrCredentialsUnavailable is the skip reason when the gate is closed.
	ErrCredentialsUnavailable = errors.New("purge credentials unavailable")

	// ErrValidation indicates a malformed request.
	ErrValidation = errors.New("validation failed")
)
