package dao

import "errors"

var (
	// ErrNotFound is returned when no record exists for the requested key.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID is returned for an empty key.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when Save receives a nil record.
	ErrNilEntity = errors.New("dao: nil entity")
)
