package service

import "errors"

var (
	// ErrInvalidInput marks errors caused by the caller's input
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing resource
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a request that does not fit the resource's state
	ErrConflict = errors.New("conflict")
)
