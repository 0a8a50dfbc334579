package model

import "errors"

// Validation errors reported synchronously, before any execution unit is
// dispatched.
var (
	ErrInvalidPoolSize   = errors.New("invalid pool size")
	ErrInvalidIterations = errors.New("invalid iterations")
)
