package service

import "errors"

// Sentinel errors shared across the auth services. Handlers map these to
// fixed status codes; anything else is a server error and stays internal.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrMisconfigured = errors.New("auth config invalid")
)
