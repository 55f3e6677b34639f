// Package apperr defines the sentinel error kinds shared across the core.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")
	ErrConfigCorrupt = errors.New("config corrupt")
	ErrIsActive      = errors.New("database is active")
	ErrConflict      = errors.New("conflict")
)
