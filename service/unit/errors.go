package unit

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport reports a unit crash or a broken unit channel.
	ErrTransport = errors.New("unit transport failure")
	// ErrUnexpectedMessage reports a dispatch message of an unknown type.
	ErrUnexpectedMessage = errors.New("unexpected unit message")
	// ErrEmptyResult reports an engine returning neither result nor error.
	ErrEmptyResult = errors.New("engine returned no result")
)

// Error wraps a unit failure cause with the unit index.
type Error struct {
	Unit int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("unit %d: %v", e.Unit, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
