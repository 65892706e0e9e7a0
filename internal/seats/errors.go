package seats

import "errors"

var (
	ErrSeatTaken      = errors.New("seat is not available")
	ErrSeatNotFound   = errors.New("seat not found")
	ErrSectorNotFound = errors.New("sector not found")
	ErrNotHolder      = errors.New("seat is not held by this user")
)
