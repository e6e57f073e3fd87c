package domain

import "errors"

var (
	// ErrValidation marks caller mistakes (bad input, empty batch).
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrNoSession marks a submission response without a session handle.
	ErrNoSession = errors.New("no session id received")
	// ErrSessionExpired marks a 404 on the progress query; the remote run is
	// gone and polling must stop.
	ErrSessionExpired = errors.New("session expired or not found")
)
