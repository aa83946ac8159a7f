package pos

import "errors"

// Domain error taxonomy. Services wrap these sentinels with context via
// pkg/errors; handlers map them to HTTP statuses with errors.Is.
var (
	ErrNotFound          = errors.New("record not found")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("unauthorized")
)
