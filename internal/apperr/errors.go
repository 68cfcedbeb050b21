package apperr

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrLocationUnavailable = errors.New("location unavailable")
)
