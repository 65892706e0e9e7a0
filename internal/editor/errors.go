package editor

import (
	"errors"

	"boxoffice/internal/seatmap"
)

var (
	ErrDraftOpen      = errors.New("a sector draft is already open")
	ErrNoDraft        = errors.New("no sector draft is open")
	ErrRowNotFound    = errors.New("row not found")
	ErrSectorNotFound = errors.New("sector not found")
)

// ValidationErrors lists the controls whose values blocked an operation
type ValidationErrors = seatmap.ValidationErrors

func fieldError(field, message string) seatmap.ValidationError {
	return seatmap.ValidationError{Field: field, Message: message}
}
