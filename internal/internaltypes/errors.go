package internaltypes

import "errors"

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrRunInProgress = errors.New("a booking run is already in progress")
)
