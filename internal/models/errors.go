package models

import "errors"

// Error kinds shared by every layer. Wrap them with fmt.Errorf("%w: ...") and
// match with errors.Is at the HTTP boundary.
var (
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("ingredient already exists")
	ErrNotFound   = errors.New("ingredient not found")
	ErrDependency = errors.New("external service failed")
)
