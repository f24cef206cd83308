package service

import "errors"

// Errors returned by the services. Callers should match them with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrNotFound     = errors.New("not found")
	ErrPersistence  = errors.New("persistence error")
)
