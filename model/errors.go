package model

import "errors"

var (
	// ErrNotFound rule source or template absent, callers always have a fallback
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument rejected user input, e.g. an empty domain
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageFailure persistence I/O failed
	ErrStorageFailure = errors.New("storage failure")
)
