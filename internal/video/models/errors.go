package models

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid arguments")
	ErrMalformedEvent  = errors.New("malformed event")
	ErrUpstream        = errors.New("upstream service failure")
	ErrUnauthenticated = errors.New("unauthenticated")
)
