package apperrors

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrConfig            = errors.New("invalid configuration")
	ErrLogCorruption     = errors.New("session log is corrupt")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNotFound          = errors.New("not found")
	ErrClockUsed         = errors.New("stage clock already started")
)
